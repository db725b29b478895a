package dao

import (
	"blogit/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostDAO struct {
	db *gorm.DB
}

// NewPostDAO 创建一个新的 PostDAO 实例
func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{db: db}
}

// CreatePost 创建新文章
func (dao *PostDAO) CreatePost(post *model.Post) error {
	return dao.db.Omit(clause.Associations).Create(post).Error
}

// FindByID 根据 ID 查询文章，带作者信息
func (dao *PostDAO) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := dao.db.Preload("Author").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListNewest returns all posts ordered by creation time descending.
func (dao *PostDAO) ListNewest() ([]model.Post, error) {
	var posts []model.Post
	err := dao.db.Preload("Author").Order("created_at DESC").Find(&posts).Error
	return posts, err
}

// SavePost 保存文章（全量更新）
// Associations are omitted so the preloaded Author is never written back.
func (dao *PostDAO) SavePost(post *model.Post) error {
	return dao.db.Omit(clause.Associations).Save(post).Error
}

// DeletePost 删除文章
func (dao *PostDAO) DeletePost(id uint64) error {
	return dao.db.Delete(&model.Post{}, id).Error
}
