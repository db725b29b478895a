package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	v1 "blogit/api/v1"
	"blogit/config"
	"blogit/dao"
	myvalidator "blogit/internal/validator"
	"blogit/middleware"
	"blogit/model"
	"blogit/service"
	"blogit/storage"
)

func main() {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}
	config.InitConfig(configPath)
	config.InitRedis()

	// 初始化数据库
	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// 自动迁移
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		panic(err)
	}

	// 初始化图片存储后端
	images, err := newImageStore()
	if err != nil {
		log.Fatalf("Init image storage failed: %v", err)
	}

	// 初始化 DAO 和 Service
	userDAO := dao.NewUserDAO(db)
	postDAO := dao.NewPostDAO(db)
	userService := service.NewUserService(userDAO)
	postService := service.NewPostService(postDAO, userDAO)
	authAPI := v1.NewAuthAPI(userService)
	postAPI := v1.NewPostAPI(postService, images)

	// 初始化路由
	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) { c.String(200, "OK") })

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 注册自定义校验器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("username", myvalidator.IsUsername); err != nil {
			panic(err)
		}
	}

	// 本地存储时静态托管上传目录
	if config.GlobalConfig.Storage.Backend == "local" {
		r.Static("/uploads", config.GlobalConfig.Storage.UploadDir)
	}

	authMW := middleware.AuthMiddleware()
	loginLimiter := middleware.LoginRateLimiter(config.RedisClient, 5, time.Minute)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authAPI.Signup)
		auth.POST("/login", loginLimiter, authAPI.Login)
		auth.GET("/me", authMW, authAPI.Me)
	}

	posts := r.Group("/posts")
	{
		posts.GET("", postAPI.List)
		posts.GET("/:id", postAPI.Get)
		posts.POST("", authMW, postAPI.Create)
		posts.PUT("/:id", authMW, postAPI.Update)
		posts.DELETE("/:id", authMW, postAPI.Delete)
	}

	// 启动服务
	if err := r.Run(config.GlobalConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newImageStore selects the image backend from configuration.
func newImageStore() (storage.ImageStore, error) {
	cfg := config.GlobalConfig.Storage
	if cfg.Backend == "cloudinary" {
		return storage.NewCloudinaryStore(cfg.CloudinaryURL, cfg.MaxUploadBytes)
	}
	return storage.NewLocalStore(cfg.UploadDir, config.GlobalConfig.Server.BaseURL, cfg.MaxUploadBytes)
}
