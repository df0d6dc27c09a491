package model

// CartItem is one line of a user's cart: a product chosen in a particular
// size, with the quantity the user wants.
//
// PRICE IS A SNAPSHOT:
// Name, Price, and Image are copied from the catalog at add-to-cart time.
// If an admin re-prices the product afterwards, lines already in carts keep
// the price the customer saw. Orders inherit the same snapshot at checkout.
//
// The uniqueness key within one cart is (ProductID, Size) — adding the same
// pair again increments Quantity instead of appending a duplicate line.
type CartItem struct {
	ID        string  `json:"id"        db:"id"`
	ProductID string  `json:"productId" db:"product_id"`
	Name      string  `json:"name"      db:"name"`
	Price     float64 `json:"price"     db:"price"`
	Image     string  `json:"image"     db:"image"`
	Quantity  int     `json:"quantity"  db:"quantity"`
	Size      string  `json:"size"      db:"size"` // "" for unsized products
}
