package main

import (
	"github.com/mara-shop/internal/config"
	"github.com/mara-shop/internal/logger"
	"github.com/mara-shop/internal/models"
	"github.com/mara-shop/internal/repository"

	"github.com/shopspring/decimal"
)

const imageBase = "https://images.unsplash.com/"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(nil); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	repo := repository.NewProductRepository(models.DB)
	created := 0
	for i := range demoProducts {
		product := demoProducts[i]
		existing, err := repo.GetByID(product.ID)
		if err != nil {
			stdLog.Printf("Failed to check product %s: %v", product.ID, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Product already exists: %s", product.ID)
			continue
		}
		product.IsActive = true
		product.SortOrder = len(demoProducts) - i
		if err := repo.Create(&product); err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.ID, err)
			continue
		}
		created++
		stdLog.Printf("Created product: %s (%s)", product.ID, product.Name)
	}
	logger.Infow("seed_completed", "created", created, "total", len(demoProducts))
}

var demoProducts = []models.Product{
	{
		ID:          "1",
		Name:        "Wireless Noise-Cancelling Headphones",
		Description: "Premium wireless headphones with active noise cancellation, providing immersive sound quality and all-day comfort.",
		Price:       models.MustMoney("299.99"),
		Images:      models.StringArray{imageBase + "photo-1505740420928-5e560c06d30e", imageBase + "photo-1487215078519-e21cc028cb29"},
		Category:    "Electronics",
		Stock:       45,
		Rating:      4.8,
		Reviews:     256,
		Featured:    true,
		Colors:      models.StringArray{"Black", "Silver", "Blue"},
	},
	{
		ID:          "2",
		Name:        "Smart Home Security Camera",
		Description: "HD security camera with motion detection, two-way audio, and cloud storage for home monitoring.",
		Price:       models.MustMoney("129.99"),
		Images:      models.StringArray{imageBase + "photo-1582139329536-e7284fece509"},
		Category:    "Electronics",
		Stock:       30,
		Rating:      4.5,
		Reviews:     189,
		IsNew:       true,
	},
	{
		ID:          "3",
		Name:        "Non-Stick Cookware Set",
		Description: "Complete 12-piece non-stick cookware set with tempered glass lids, suitable for all cooktops.",
		Price:       models.MustMoney("199.99"),
		Discount:    decimal.NewFromInt(15),
		Images:      models.StringArray{imageBase + "photo-1584990347449-a851c12c8e17"},
		Category:    "Home & Kitchen",
		Stock:       20,
		Rating:      4.7,
		Reviews:     75,
	},
	{
		ID:          "4",
		Name:        "Organic Cotton T-Shirt",
		Description: "Soft, breathable organic cotton t-shirt with a classic fit, perfect for everyday wear.",
		Price:       models.MustMoney("24.99"),
		Images:      models.StringArray{imageBase + "photo-1581655353564-df123a1eb820"},
		Category:    "Clothing",
		Stock:       100,
		Rating:      4.3,
		Reviews:     42,
		Colors:      models.StringArray{"White", "Black", "Navy", "Gray"},
		Sizes:       models.StringArray{"S", "M", "L", "XL"},
	},
	{
		ID:          "5",
		Name:        "Natural Skincare Gift Set",
		Description: "Luxurious set of natural skincare products, including facial cleanser, toner, moisturizer, and serum.",
		Price:       models.MustMoney("89.99"),
		Images:      models.StringArray{imageBase + "photo-1570172619644-dfd03ed5d881"},
		Category:    "Beauty & Personal Care",
		Stock:       15,
		Rating:      4.9,
		Reviews:     68,
		Featured:    true,
	},
	{
		ID:          "6",
		Name:        "Organic Fresh Fruit Box",
		Description: "Seasonal selection of fresh, organic fruits delivered directly from local farms.",
		Price:       models.MustMoney("34.99"),
		Images:      models.StringArray{imageBase + "photo-1610832958506-aa56368176cf"},
		Category:    "Groceries",
		Stock:       50,
		Rating:      4.6,
		Reviews:     124,
		IsNew:       true,
	},
	{
		ID:          "7",
		Name:        "Educational STEM Building Kit",
		Description: "Interactive building kit that teaches science, technology, engineering, and math concepts through play.",
		Price:       models.MustMoney("49.99"),
		Discount:    decimal.NewFromInt(10),
		Category:    "Toys & Games",
		Stock:       25,
		Rating:      4.7,
		Reviews:     89,
	},
	{
		ID:          "8",
		Name:        "Smartphone with Triple Camera",
		Description: "Latest smartphone with a triple camera system, fast processor, and all-day battery life.",
		Price:       models.MustMoney("899.99"),
		Category:    "Electronics",
		Stock:       10,
		Rating:      4.8,
		Reviews:     201,
		Featured:    true,
		Colors:      models.StringArray{"Black", "Silver", "Gold"},
	},
}
