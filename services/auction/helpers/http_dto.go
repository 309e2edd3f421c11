package helpers

// Form DTOs bound from request bodies. Validation happens in the service
// layer, which reports problems as field-error sets.

type ListingForm struct {
	Title       string  `form:"title"`
	Description string  `form:"description"`
	StartPrice  float64 `form:"start_price"`
	ImageURL    string  `form:"image_url"`
	Category    string  `form:"category"`
}

type BidForm struct {
	BidPrice float64 `form:"bid_price"`
}

type CommentForm struct {
	Content string `form:"content"`
}

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type RegisterForm struct {
	Username     string `form:"username"`
	Email        string `form:"email"`
	Password     string `form:"password"`
	Confirmation string `form:"confirmation"`
}
