package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
)

// form reads typed values from a form body, keeping the first error.
type form struct {
	r   *http.Request
	err error
}

func (f *form) required(name string) string {
	v := strings.TrimSpace(f.r.FormValue(name))
	if v == "" && f.err == nil {
		f.err = domain.Errorf("%s is required", name)
	}
	return v
}

func (f *form) intValue(name string) int {
	v := f.required(name)
	if f.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.err = domain.Errorf("%s: invalid integer %q", name, v)
	}
	return n
}

func (f *form) dateValue(name string) date.Date {
	v := f.required(name)
	if f.err != nil {
		return date.Date{}
	}
	d, err := date.Parse(v)
	if err != nil {
		f.err = domain.Errorf("%s: invalid date %q, expected YYYY-MM-DD", name, v)
	}
	return d
}

func (f *form) moneyValue(name string) domain.Money {
	v := f.required(name)
	if f.err != nil {
		return domain.Zero
	}
	m, err := domain.ParseMoney(v)
	if err != nil {
		f.err = err
	}
	return m
}

func (f *form) decimalValue(name string) decimal.Decimal {
	v := f.required(name)
	if f.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		f.err = domain.Errorf("%s: invalid number %q", name, v)
	}
	return d
}

func (f *form) boolValue(name string) bool {
	b, _ := strconv.ParseBool(f.r.FormValue(name))
	return b
}

// CreateAssetValue handles POST /api/v1/asset-values.
func (h *Handler) CreateAssetValue(w http.ResponseWriter, r *http.Request) {
	f := &form{r: r}
	v := domain.AssetValue{
		AssetID:   f.intValue("asset_id"),
		SetDate:   f.dateValue("date"),
		Amount:    f.moneyValue("amount"),
		Liability: f.boolValue("liability"),
	}
	if f.err != nil {
		writeError(w, http.StatusBadRequest, f.err.Error())
		return
	}

	created, err := h.stores.AddAssetValue(r.Context(), v)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CreateAssetShare handles POST /api/v1/asset-shares.
func (h *Handler) CreateAssetShare(w http.ResponseWriter, r *http.Request) {
	f := &form{r: r}
	sh := domain.AssetShare{
		AssetID: f.intValue("asset_id"),
		Date:    f.dateValue("date"),
		Shares:  f.decimalValue("shares"),
		Price:   f.decimalValue("price"),
	}
	if f.err != nil {
		writeError(w, http.StatusBadRequest, f.err.Error())
		return
	}

	created, err := h.stores.AddAssetShare(r.Context(), sh)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
