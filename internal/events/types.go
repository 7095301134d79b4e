package events

type ProductsLoaded struct {
	Count int `json:"count"`
}

type LoadFailed struct {
	Message string `json:"message"`
}

type ProductAdded struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
}

type ProductUpdated struct {
	ProductID int      `json:"product_id"`
	Columns   []string `json:"columns"`
}

type ProductDeleted struct {
	ProductID int `json:"product_id"`
}

// ModeChanged is published on every workflow view transition
type ModeChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type DeleteRequested struct {
	ProductID int `json:"product_id"`
}

type ImageAttached struct {
	URL string `json:"url"`
}

type ToastShown struct {
	Message string `json:"message"`
	Kind    string `json:"type"`
}

type ToastDismissed struct{}

// AlertRaised carries a blocking alert of the standalone create dialog
type AlertRaised struct {
	Message string `json:"message"`
}
