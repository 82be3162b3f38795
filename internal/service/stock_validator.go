package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/infra/remote"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultStockCheckConcurrency = 4

// StockReport 結帳前的庫存檢查結果，每次重新計算，不做增量更新
type StockReport struct {
	Warnings   []model.StockWarning `json:"warnings"`
	Unverified []string             `json:"unverified"`
	CheckedAt  time.Time            `json:"checkedAt"`
	// CartVersion 計算時所依據的購物車版本
	CartVersion uint64 `json:"cartVersion"`
}

// BlocksCheckout 任一品項可售數量為 0 就不可結帳
func (r StockReport) BlocksCheckout() bool {
	for _, w := range r.Warnings {
		if w.Blocking() {
			return true
		}
	}
	return false
}

func (r StockReport) Blocking() []model.StockWarning {
	var out []model.StockWarning
	for _, w := range r.Warnings {
		if w.Blocking() {
			out = append(out, w)
		}
	}
	return out
}

type IStockValidator interface {
	Validate(ctx context.Context, lines []model.CartLine) StockReport
}

type StockValidator struct {
	client      remote.ICommerceClient
	concurrency int
	now         func() time.Time
}

var _ IStockValidator = (*StockValidator)(nil)

func NewStockValidator(client remote.ICommerceClient, concurrency int) *StockValidator {
	if client == nil {
		panic("commerce client cannot be nil")
	}
	if concurrency < 1 {
		concurrency = defaultStockCheckConcurrency
	}
	return &StockValidator{client: client, concurrency: concurrency, now: time.Now}
}

type lineCheck struct {
	warning  *model.StockWarning
	verified bool
}

// Validate 逐一查詢商品庫存
// 單一商品查詢失敗只列入 Unverified，不影響其他品項
func (v *StockValidator) Validate(ctx context.Context, lines []model.CartLine) StockReport {
	results := make([]lineCheck, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, line := range lines {
		g.Go(func() error {
			results[i] = v.check(gctx, line)
			return nil
		})
	}
	_ = g.Wait()

	report := StockReport{
		Warnings:   []model.StockWarning{},
		Unverified: []string{},
		CheckedAt:  v.now(),
	}
	for i, r := range results {
		if !r.verified {
			report.Unverified = append(report.Unverified, lines[i].ProductID)
			continue
		}
		if r.warning != nil {
			report.Warnings = append(report.Warnings, *r.warning)
		}
	}
	return report
}

func (v *StockValidator) check(ctx context.Context, line model.CartLine) lineCheck {
	product, err := v.client.GetProduct(ctx, line.ProductID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", line.ProductID).Msg("stock lookup failed, line unverified")
		return lineCheck{}
	}

	available := product.AvailableStock()
	if available >= line.Quantity {
		return lineCheck{verified: true}
	}

	name := product.Name
	if name == "" {
		name = line.ProductName
	}
	return lineCheck{
		verified: true,
		warning: &model.StockWarning{
			LineID:            line.ID,
			ProductID:         line.ProductID,
			ProductName:       name,
			RequestedQuantity: line.Quantity,
			AvailableQuantity: available,
			TotalStock:        product.Stock,
			ReservedStock:     product.ReservedStock,
		},
	}
}
