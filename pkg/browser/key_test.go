package browser

import "testing"

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://shop.test/orders/18273/items?tab=all", "shop.test/orders/*/items"},
		{"https://shop.test/orders/18273/items", "shop.test/orders/*/items"},
		{"https://shop.test/cart", "shop.test/cart"},
		{"https://shop.test/", "shop.test"},
		{"https://shop.test", "shop.test"},
		{"https://app.test/users/550e8400-e29b-41d4-a716-446655440000/profile", "app.test/users/*/profile"},
		{"https://app.test/builds/deadbeefcafe", "app.test/builds/*"},
		{"https://app.test/docs/getting-started", "app.test/docs/getting-started"},
		{"https://app.test/page#section-2", "app.test/page"},
		{"http://localhost:8080/admin/42", "localhost:8080/admin/*"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := KeyFromURL(tt.url); got != tt.want {
			t.Errorf("KeyFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestKeyFromURL_SameTemplateSharesKey(t *testing.T) {
	a := KeyFromURL("https://shop.test/orders/1/items")
	b := KeyFromURL("https://shop.test/orders/99999/items")
	if a != b {
		t.Errorf("keys differ for the same page template: %q vs %q", a, b)
	}

	c := KeyFromURL("https://shop.test/orders/1/payment")
	if a == c {
		t.Errorf("distinct page templates share key %q", a)
	}
}
