package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/internal/cms"
	mw "github.com/hocine1592/offlinesteamweb/internal/middleware"
	"github.com/hocine1592/offlinesteamweb/internal/observability"
	"github.com/hocine1592/offlinesteamweb/internal/seo"
)

const templateOrderModal = "frag_order_modal"

// purchaseView is the purchase page payload.
type purchaseView struct {
	Content cms.Purchase
	Modal   orderFragment
}

// orderFragment is the order modal's template data. A nil Order renders the
// closed modal.
type orderFragment struct {
	Lang  string
	Order *cms.Order
}

// handlePurchase renders plans, features, FAQ and contacts. ?plan= opens the
// order modal for that plan.
func (s *server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	content, err := s.cms.Purchase(r.Context(), lang)
	if err != nil {
		observability.FromContext(r.Context()).Error("load purchase content", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, s.i18nOrDefault(lang, "errors.internal", "Something went wrong"))
		return
	}

	modal := orderFragment{Lang: lang}
	if plan := r.URL.Query().Get("plan"); plan != "" {
		if order, err := s.cms.Order(r.Context(), lang, plan); err == nil {
			modal.Order = &order
		}
	}

	title := content.Title
	if title == "" {
		title = s.i18nOrDefault(lang, "purchase.title", "Buy an offline account")
	}
	desc := content.Summary
	if desc == "" {
		desc = s.i18nOrDefault(lang, "purchase.description", "")
	}
	vm := s.basePage(r, lang, title, desc)
	offers := make([]seo.Offer, 0, len(content.Plans))
	for _, p := range content.Plans {
		offers = append(offers, seo.Offer{Name: p.Name, Price: p.Price, Currency: content.Currency})
	}
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Product(title, desc, vm.SEO.Canonical, offers)))
	vm.Purchase = purchaseView{Content: content, Modal: modal}
	s.renderPage(w, r, "purchase", vm)
}

// handleOrder renders the order modal for ?plan=.
func (s *server) handleOrder(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	order, err := s.cms.Order(r.Context(), lang, r.URL.Query().Get("plan"))
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			mw.WriteError(w, r, http.StatusNotFound, s.i18nOrDefault(lang, "errors.not_found", "Not found"))
			return
		}
		observability.FromContext(r.Context()).Error("prepare order", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, s.i18nOrDefault(lang, "errors.internal", "Something went wrong"))
		return
	}
	observability.FromContext(r.Context()).Info("order opened",
		zap.String("plan", order.Plan.ID),
		zap.String("reference", order.Reference),
	)
	s.renderTemplate(w, r, templateOrderModal, orderFragment{Lang: lang, Order: &order})
}

// handleOrderClose renders the closed order modal.
func (s *server) handleOrderClose(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, templateOrderModal, orderFragment{Lang: mw.Lang(r)})
}
