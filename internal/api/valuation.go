package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/chart"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/valuation"
)

type netWorthResponse struct {
	snapshot.Summary
	Growth valuation.Growth `json:"growth"`
}

// GetNetWorth handles GET /api/v1/networth.
func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	c := h.cache()
	writeJSON(w, http.StatusOK, netWorthResponse{
		Summary: snapshot.Summarize(h.engine, c, d),
		Growth:  h.engine.Growth(d, func(day date.Date) domain.Money { return h.engine.NetWorth(c, day) }),
	})
}

// seriesRange parses ?from= and ?to=, defaulting to the first observation and today.
func (h *Handler) seriesRange(w http.ResponseWriter, r *http.Request, first date.Date) (date.Date, date.Date, bool) {
	from, err := dateQuery(r, "from", first)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return date.Date{}, date.Date{}, false
	}
	to, err := dateQuery(r, "to", h.engine.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return date.Date{}, date.Date{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return date.Date{}, date.Date{}, false
	}
	return from, to, true
}

// GetNetWorthSeries handles GET /api/v1/networth/series.
func (h *Handler) GetNetWorthSeries(w http.ResponseWriter, r *http.Request) {
	c := h.cache()
	from, to, ok := h.seriesRange(w, r, h.engine.AssetStartDate(c))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Series(from, to, func(d date.Date) domain.Money { return h.engine.NetWorth(c, d) }))
}

// GetNetWorthAccrual handles GET /api/v1/networth/accrual.
func (h *Handler) GetNetWorthAccrual(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.NetWorthAccrual(h.cache(), d))
}

// GetNetWorthChart handles GET /api/v1/networth/chart.png.
func (h *Handler) GetNetWorthChart(w http.ResponseWriter, r *http.Request) {
	c := h.cache()
	from, to, ok := h.seriesRange(w, r, h.engine.AssetStartDate(c))
	if !ok {
		return
	}

	png, err := h.render("Net worth",
		chart.Line{Name: "Net worth", Points: h.engine.Series(from, to, func(d date.Date) domain.Money { return h.engine.NetWorth(c, d) })},
		chart.Line{Name: "FI net worth", Points: h.engine.Series(from, to, func(d date.Date) domain.Money { return h.engine.FINetWorth(c, d) })},
	)
	switch {
	case errors.Is(err, chart.ErrTooFewPoints):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to render chart", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		slog.Warn("failed to write chart", "error", err)
	}
}

type fiResponse struct {
	Date            date.Date       `json:"date"`
	FINetWorth      domain.Money    `json:"fiNetWorth"`
	FIExpenses      domain.Money    `json:"fiExpenses"`
	WithdrawalRate  decimal.Decimal `json:"withdrawalRate"`
	FIRatio         decimal.Decimal `json:"fiRatio"`
	RunningExpenses domain.Money    `json:"runningExpenses"`
	RunningIncome   domain.Money    `json:"runningIncome"`
	SavingsRate     decimal.Decimal `json:"savingsRate"`
}

// GetFI handles GET /api/v1/fi.
func (h *Handler) GetFI(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	c := h.cache()
	writeJSON(w, http.StatusOK, fiResponse{
		Date:            d,
		FINetWorth:      h.engine.FINetWorth(c, d),
		FIExpenses:      h.engine.FIExpenses(c, d),
		WithdrawalRate:  h.engine.Settings().WithdrawalRate,
		FIRatio:         h.engine.FIRatio(c, d),
		RunningExpenses: h.engine.RunningExpenses(c, d),
		RunningIncome:   h.engine.RunningIncome(c, d),
		SavingsRate:     h.engine.RunningSavingsRate(c, d),
	})
}

// GetCountdown handles GET /api/v1/fi/countdown.
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.RetirementCountdown(h.cache(), d))
}

type portfolioResponse struct {
	Date       date.Date         `json:"date"`
	Value      domain.Money      `json:"value"`
	Currencies []valuation.Share `json:"currencies"`
}

// GetPortfolio handles GET /api/v1/portfolio.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	c := h.cache()
	writeJSON(w, http.StatusOK, portfolioResponse{
		Date:       d,
		Value:      h.engine.PortfolioValue(c, d),
		Currencies: h.engine.PortfolioCurrencyBreakdown(c, d),
	})
}

// GetRebalance handles GET /api/v1/portfolio/rebalance.
func (h *Handler) GetRebalance(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Rebalance(h.cache(), d))
}

// GetCurrencyBreakdown handles GET /api/v1/breakdown/currency.
func (h *Handler) GetCurrencyBreakdown(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.CurrencyBreakdown(h.cache(), d))
}

// GetClassBreakdown handles GET /api/v1/breakdown/class.
func (h *Handler) GetClassBreakdown(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.ClassBreakdown(h.cache(), d))
}

type assetValueResponse struct {
	Asset           domain.Asset     `json:"asset"`
	Date            date.Date        `json:"date"`
	Value           domain.Money     `json:"value"`
	Converted       domain.Money     `json:"converted"`
	DefaultCurrency string           `json:"defaultCurrency"`
	Shares          *decimal.Decimal `json:"shares,omitempty"`
	StartDate       date.Date        `json:"startDate"`
}

// GetAssetValue handles GET /api/v1/assets/{id}/value.
func (h *Handler) GetAssetValue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	d, ok := h.at(w, r)
	if !ok {
		return
	}

	c := h.cache()
	a, found := c.Asset(id)
	if !found {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	resp := assetValueResponse{
		Asset:           a,
		Date:            d,
		Value:           h.engine.AssetValue(c, a, d),
		Converted:       h.engine.AssetValueConv(c, a, d),
		DefaultCurrency: h.engine.DefaultCurrency(),
		StartDate:       h.engine.AssetStartDateOf(c, a),
	}
	if a.ShareBased {
		shares := h.engine.ShareCount(c, a.ID, d)
		resp.Shares = &shares
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetObjectives handles GET /api/v1/objectives.
func (h *Handler) GetObjectives(w http.ResponseWriter, r *http.Request) {
	d, ok := h.at(w, r)
	if !ok {
		return
	}
	c := h.cache()
	statuses := make([]valuation.ObjectiveStatus, 0, len(c.Objectives()))
	for _, o := range c.Objectives() {
		statuses = append(statuses, h.engine.Objective(c, o, d))
	}
	writeJSON(w, http.StatusOK, statuses)
}
