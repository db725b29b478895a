package utils

import "golang.org/x/crypto/bcrypt"

// bcrypt cost 10 matches bcrypt.DefaultCost; kept explicit because the stored
// hashes must stay comparable across deployments.
const hashCost = 10

// HashPassword 对明文密码进行 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash 校验明文密码与哈希是否匹配
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
