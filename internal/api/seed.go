package api

import "webstore/go-backend/internal/domain"

// Sample data inserted by the seed endpoints so a fresh install has
// something to browse, an admin to chat with, and a seller on the
// top-sellers shelf.

type sampleUser struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
	IsSeller bool
	Seller   domain.SellerProfile
}

var sampleUsers = []sampleUser{
	{Name: "Admin", Email: "admin@example.com", Password: "1234", IsAdmin: true},
	{Name: "John", Email: "user@example.com", Password: "1234"},
	{
		Name: "Sarah", Email: "seller@example.com", Password: "1234", IsSeller: true,
		Seller: domain.SellerProfile{
			Name: "Sarah's Shop", Logo: "/images/logo1.png",
			Description: "best quality products", Rating: 4.5, NumReviews: 120,
		},
	},
}

type sampleProduct struct {
	Name         string
	Image        string
	Price        float64
	Category     string
	Brand        string
	CountInStock int
	Rating       float64
	NumReviews   int
	Description  string
}

var sampleProducts = []sampleProduct{
	{
		Name: "Slim Shirt", Image: "/images/p1.jpg", Price: 60,
		Category: "Shirts", Brand: "Nike", CountInStock: 10,
		Rating: 4.5, NumReviews: 10, Description: "high quality product",
	},
	{
		Name: "Fit Shirt", Image: "/images/p2.jpg", Price: 50,
		Category: "Shirts", Brand: "Adidas", CountInStock: 20,
		Rating: 4.0, NumReviews: 10, Description: "high quality product",
	},
	{
		Name: "Best Pants", Image: "/images/p3.jpg", Price: 70,
		Category: "Pants", Brand: "Oliver", CountInStock: 5,
		Rating: 4.5, NumReviews: 14, Description: "high quality product",
	},
	{
		Name: "Top Pants", Image: "/images/p4.jpg", Price: 65,
		Category: "Pants", Brand: "Puma", CountInStock: 0,
		Rating: 4.5, NumReviews: 10, Description: "high quality product",
	},
}
