package domain

// SeedUsers returns the users a fresh deployment starts with
func SeedUsers() []User {
	return []User{
		{Name: "John Doe", Email: "john@example.com", Role: "admin"},
		{Name: "Jane Smith", Email: "jane@example.com", Role: "user"},
		{Name: "Bob Wilson", Email: "bob@example.com", Role: "user"},
	}
}

// SeedItems returns the items a fresh deployment starts with
func SeedItems() []Item {
	return []Item{
		{Name: "Product A", Price: 29.99, Category: "electronics"},
		{Name: "Product B", Price: 49.99, Category: "clothing"},
		{Name: "Product C", Price: 19.99, Category: "books"},
	}
}
