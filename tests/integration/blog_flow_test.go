package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"
)

// The suite runs against a live server, same as the rest of the stack it
// exercises (MySQL, Redis, image storage). Set INTEGRATION_BASE_URL to enable.
func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("INTEGRATION_BASE_URL")
	if url == "" {
		t.Skip("INTEGRATION_BASE_URL not set; skipping integration test")
	}
	return url
}

var client = &http.Client{Timeout: 5 * time.Second}

func TestBlogLifecycle(t *testing.T) {
	base := baseURL(t)
	suffix := time.Now().UnixNano()
	alice := fmt.Sprintf("alice_%d", suffix)
	aliceEmail := fmt.Sprintf("alice_%d@example.com", suffix)
	bob := fmt.Sprintf("bob_%d", suffix)
	bobEmail := fmt.Sprintf("bob_%d@example.com", suffix)

	// 1. Signup returns a token whose subject is the created user.
	status, body := postJSON(t, base+"/auth/signup", map[string]string{
		"username": alice, "email": aliceEmail, "password": "secret1",
	}, "")
	if status != http.StatusOK {
		t.Fatalf("signup status = %d body=%s", status, body)
	}
	var signupResp struct {
		Token string `json:"token"`
		User  struct {
			ID       uint64 `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	mustDecode(t, body, &signupResp)
	aliceToken := signupResp.Token

	status, body = getWithToken(t, base+"/auth/me", aliceToken)
	if status != http.StatusOK {
		t.Fatalf("me status = %d body=%s", status, body)
	}
	var meResp struct {
		User struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}
	mustDecode(t, body, &meResp)
	if meResp.User.ID != signupResp.User.ID {
		t.Errorf("token subject id %d != created user id %d", meResp.User.ID, signupResp.User.ID)
	}

	// 2. Duplicate email (different username) and duplicate username both 409.
	status, _ = postJSON(t, base+"/auth/signup", map[string]string{
		"username": alice + "x", "email": aliceEmail, "password": "secret1",
	}, "")
	if status != http.StatusConflict {
		t.Errorf("duplicate email signup status = %d, want 409", status)
	}
	status, _ = postJSON(t, base+"/auth/signup", map[string]string{
		"username": alice, "email": "other_" + aliceEmail, "password": "secret1",
	}, "")
	if status != http.StatusConflict {
		t.Errorf("duplicate username signup status = %d, want 409", status)
	}

	// 3. Wrong password and unknown email fail identically.
	wrongStatus, wrongBody := postJSON(t, base+"/auth/login", map[string]string{
		"email": aliceEmail, "password": "not-the-password",
	}, "")
	unknownStatus, unknownBody := postJSON(t, base+"/auth/login", map[string]string{
		"email": fmt.Sprintf("nobody_%d@example.com", suffix), "password": "whatever1",
	}, "")
	if wrongStatus != unknownStatus || !bytes.Equal(wrongBody, unknownBody) {
		t.Errorf("login failures distinguishable: (%d %s) vs (%d %s)",
			wrongStatus, wrongBody, unknownStatus, unknownBody)
	}

	// 4. Create two posts; listing is newest-first with the author expanded.
	firstID := createPost(t, base, aliceToken, "Hi", "World")
	time.Sleep(1100 * time.Millisecond) // keep distinct created_at values for the ordering check
	secondID := createPost(t, base, aliceToken, "Second", "Post")

	status, body = getWithToken(t, base+"/posts", "")
	if status != http.StatusOK {
		t.Fatalf("list status = %d body=%s", status, body)
	}
	var posts []struct {
		ID     uint64 `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	mustDecode(t, body, &posts)
	if idxOf(posts, secondID) > idxOf(posts, firstID) {
		t.Error("posts not ordered by creation time descending")
	}
	if i := idxOf(posts, firstID); i >= 0 && posts[i].Author.Username != alice {
		t.Errorf("author.username = %q, want %q", posts[i].Author.Username, alice)
	}

	// 5. Mutations without a token are unauthorized.
	status, _ = putForm(t, base+"/posts/"+itoa(firstID), "", map[string]string{"title": "Nope"})
	if status != http.StatusUnauthorized {
		t.Errorf("update without token status = %d, want 401", status)
	}

	// 6. Bob cannot touch Alice's post.
	status, body = postJSON(t, base+"/auth/signup", map[string]string{
		"username": bob, "email": bobEmail, "password": "secret1",
	}, "")
	if status != http.StatusOK {
		t.Fatalf("bob signup status = %d body=%s", status, body)
	}
	var bobResp struct {
		Token string `json:"token"`
	}
	mustDecode(t, body, &bobResp)

	status, _ = putForm(t, base+"/posts/"+itoa(firstID), bobResp.Token, map[string]string{"title": "Hijack"})
	if status != http.StatusForbidden {
		t.Errorf("foreign update status = %d, want 403", status)
	}
	status, _ = deleteWithToken(t, base+"/posts/"+itoa(firstID), bobResp.Token)
	if status != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403", status)
	}

	// 7. Partial update preserves unspecified fields.
	status, body = putForm(t, base+"/posts/"+itoa(firstID), aliceToken, map[string]string{"title": "Hi v2"})
	if status != http.StatusOK {
		t.Fatalf("partial update status = %d body=%s", status, body)
	}
	var updated struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	mustDecode(t, body, &updated)
	if updated.Title != "Hi v2" || updated.Content != "World" {
		t.Errorf("partial update: got title=%q content=%q, want Hi v2 / World", updated.Title, updated.Content)
	}

	// 8. Owner delete works, then the post is gone.
	status, _ = deleteWithToken(t, base+"/posts/"+itoa(firstID), aliceToken)
	if status != http.StatusOK {
		t.Errorf("owner delete status = %d, want 200", status)
	}
	status, body = getWithToken(t, base+"/posts/"+itoa(firstID), "")
	if status != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", status)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	mustDecode(t, body, &errResp)
	if errResp.Error != "Not found" {
		t.Errorf(`missing post error = %q, want "Not found"`, errResp.Error)
	}
}

func TestGetNonexistentPost(t *testing.T) {
	base := baseURL(t)
	status, body := getWithToken(t, base+"/posts/999999999", "")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d body=%s, want 404", status, body)
	}
}

// TestConcurrentUpdateLastWriteWins documents the known consistency gap:
// concurrent updates on one post race without optimistic locking and the last
// write wins. The test records the behavior; it does not fail on the race.
func TestConcurrentUpdateLastWriteWins(t *testing.T) {
	base := baseURL(t)
	suffix := time.Now().UnixNano()
	status, body := postJSON(t, base+"/auth/signup", map[string]string{
		"username": fmt.Sprintf("racer_%d", suffix),
		"email":    fmt.Sprintf("racer_%d@example.com", suffix),
		"password": "secret1",
	}, "")
	if status != http.StatusOK {
		t.Fatalf("signup status = %d body=%s", status, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	mustDecode(t, body, &resp)

	id := createPost(t, base, resp.Token, "Race", "base")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			putForm(t, base+"/posts/"+itoa(id), resp.Token, map[string]string{
				"content": fmt.Sprintf("writer-%d", i),
			})
		}(i)
	}
	wg.Wait()

	status, body = getWithToken(t, base+"/posts/"+itoa(id), "")
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	var post struct {
		Content string `json:"content"`
	}
	mustDecode(t, body, &post)
	t.Logf("last-write-wins survivor: %q (no optimistic lock by design)", post.Content)
}

// ======================= helpers =======================

func createPost(t *testing.T, base, token, title, content string) uint64 {
	t.Helper()
	status, body := postForm(t, base+"/posts", token, map[string]string{
		"title": title, "content": content,
	})
	if status != http.StatusOK {
		t.Fatalf("create post status = %d body=%s", status, body)
	}
	var post struct {
		ID uint64 `json:"id"`
	}
	mustDecode(t, body, &post)
	return post.ID
}

func postJSON(t *testing.T, url string, body map[string]string, token string) (int, []byte) {
	t.Helper()
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return do(t, req, token)
}

func postForm(t *testing.T, url, token string, fields map[string]string) (int, []byte) {
	return multipartReq(t, http.MethodPost, url, token, fields)
}

func putForm(t *testing.T, url, token string, fields map[string]string) (int, []byte) {
	return multipartReq(t, http.MethodPut, url, token, fields)
}

func multipartReq(t *testing.T, method, url, token string, fields map[string]string) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return do(t, req, token)
}

func getWithToken(t *testing.T, url, token string) (int, []byte) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	return do(t, req, token)
}

func deleteWithToken(t *testing.T, url, token string) (int, []byte) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	return do(t, req, token)
}

func do(t *testing.T, req *http.Request, token string) (int, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func mustDecode(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode failed: %v body=%s", err, data)
	}
}

func itoa(id uint64) string {
	return fmt.Sprintf("%d", id)
}

func idxOf(posts []struct {
	ID     uint64 `json:"id"`
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
}, id uint64) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
