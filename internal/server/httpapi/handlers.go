package httpapi

import (
	"net/http"
	"time"

	"github.com/electronshop/shopkeeper/internal/server/payload"
	"github.com/go-chi/chi/v5"
)

func pathID(r *http.Request, name string) (uint64, error) {
	return payload.ID(name, chi.URLParam(r, name))
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	head, err := h.cfg.Ledger.Head(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{
			"success": false,
			"message": "ledger unreachable",
			"error":   err.Error(),
		})
		return
	}
	ok(w, "Electron Shop API is running", envelope{
		"ledger_head": head,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed(w, "User registered successfully on blockchain", c)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.cfg.Sessions.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "Login successful", envelope{"user": s.User, "token": s.Token, "expires_at": s.ExpiresAt})
}

func (h *handler) verifySession(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	valid, err := h.cfg.Sessions.VerifySession(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !valid {
		writeJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Session invalid"})
		return
	}
	ok(w, "Session valid", nil)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.cfg.Users.Profile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"user": u})
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.cfg.Users.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "Users fetched successfully", envelope{"count": list.Count, "users": list.Items})
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.cfg.Products.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "Products fetched successfully", envelope{"count": list.Count, "products": list.Items})
}

func (h *handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.cfg.Products.Search(r.Context(), q.Get("query"), q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"count": list.Count, "products": list.Items})
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.cfg.Products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"product": p})
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Products.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "product created", "by", actor(r))
	confirmed(w, "Product added successfully to blockchain", c)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cs, err := h.cfg.Products.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "product updated", "id", id, "by", actor(r))
	ok(w, "Product updated successfully", envelope{"confirmations": cs})
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Products.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "product deleted", "id", id, "by", actor(r))
	confirmed(w, "Product deleted successfully", c)
}

func (h *handler) addToCart(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Cart.Add(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed(w, "Item added to cart successfully", c)
}

func (h *handler) listAllCarts(w http.ResponseWriter, r *http.Request) {
	list, err := h.cfg.Cart.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"count": list.Count, "cart": list.Items})
}

func (h *handler) userCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.cfg.Cart.ListForUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"count": list.Count, "cart": list.Items})
}

func (h *handler) cartSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.cfg.Cart.Summary(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"summary": s})
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Cart.Clear(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed(w, "Cart cleared successfully", c)
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Orders.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	confirmed(w, "Order created successfully", c)
}

func (h *handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.cfg.Orders.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "Orders fetched successfully", envelope{"count": list.Count, "orders": list.Items})
}

func (h *handler) userOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.cfg.Orders.ListForUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, "", envelope{"count": list.Count, "orders": list.Items})
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "order_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.cfg.Orders.UpdateStatus(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info(r.Context(), "order status updated", "id", id, "by", actor(r))
	confirmed(w, "Order status updated successfully", c)
}
