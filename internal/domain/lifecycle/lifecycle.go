// Package lifecycle maps a remote order status onto a display-ready stage
// descriptor. It never fails: unknown statuses are shown as PENDING.
package lifecycle

import (
	"time"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
)

const (
	OrderingCancelled = -1
	OrderingRejected  = -2
	OrderingFallback  = 1
	OrderingCompleted = 5
)

var orderings = map[model.OrderStatus]int{
	model.OrderStatusPending:       1,
	model.OrderStatusCreated:       1,
	model.OrderStatusConfirmed:     2,
	model.OrderStatusProcessing:    3,
	model.OrderStatusPendingPickup: 3,
	model.OrderStatusReadyPickup:   4,
	model.OrderStatusReady:         4,
	model.OrderStatusCompleted:     OrderingCompleted,
	model.OrderStatusCancelled:     OrderingCancelled,
	model.OrderStatusRejected:      OrderingRejected,
}

// 預估完成時間只在這些狀態顯示
var estimateStatuses = map[model.OrderStatus]bool{
	model.OrderStatusCreated:    true,
	model.OrderStatusConfirmed:  true,
	model.OrderStatusProcessing: true,
}

type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
)

type Step struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Ordering    int       `json:"ordering"`
	State       StepState `json:"state"`
}

type AbnormalView struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Descriptor 訂單目前狀態的顯示資訊
type Descriptor struct {
	OrderID    string            `json:"orderId"`
	RawStatus  model.OrderStatus `json:"rawStatus"`
	Status     model.OrderStatus `json:"status"`
	Recognized bool              `json:"recognized"`
	Ordering   int               `json:"ordering"`
	Terminal   bool              `json:"terminal"`
	Abnormal   bool              `json:"abnormal"`

	// Steps 僅在非異常狀態時有值，異常狀態改用 AbnormalView
	Steps        []Step        `json:"steps,omitempty"`
	AbnormalView *AbnormalView `json:"abnormalView,omitempty"`

	PickupCode       string        `json:"pickupCode,omitempty"`
	ShowEstimate     bool          `json:"showEstimate"`
	EstimatedReadyAt *time.Time    `json:"estimatedReadyAt,omitempty"`
	EstimatedWait    time.Duration `json:"estimatedWait,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
}

// Normalize returns the status used for display; unknown codes become PENDING.
func Normalize(status model.OrderStatus) (model.OrderStatus, bool) {
	status = model.ParseOrderStatus(string(status))
	if _, ok := orderings[status]; ok {
		return status, true
	}
	return model.OrderStatusPending, false
}

func Ordering(status model.OrderStatus) int {
	normalized, _ := Normalize(status)
	return orderings[normalized]
}

// IsTerminal COMPLETED, CANCELLED, REJECTED 之後不會再有狀態轉換
func IsTerminal(status model.OrderStatus) bool {
	o := Ordering(status)
	return o == OrderingCompleted || o < 0
}

func IsAbnormal(status model.OrderStatus) bool {
	return Ordering(status) < 0
}

// IsReadyForPickup reports whether the status is the ready-for-pickup stage.
func IsReadyForPickup(status model.OrderStatus) bool {
	return Ordering(status) == 4
}

type Lifecycle struct {
	catalog *Catalog
}

func New(catalog *Catalog) *Lifecycle {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Lifecycle{catalog: catalog}
}

// Describe 將遠端訂單轉成顯示用描述
// now 用於計算預估等待時間
func (l *Lifecycle) Describe(order model.OrderRecord, now time.Time) Descriptor {
	status, recognized := Normalize(order.Status)
	ordering := orderings[status]

	d := Descriptor{
		OrderID:    order.ID,
		RawStatus:  order.Status,
		Status:     status,
		Recognized: recognized,
		Ordering:   ordering,
		Terminal:   IsTerminal(status),
		Abnormal:   ordering < 0,
	}

	if d.Abnormal {
		view := l.catalog.abnormalView(status)
		d.AbnormalView = &view
		if status == model.OrderStatusRejected {
			d.RejectionReason = order.RejectionReason
			if d.RejectionReason == "" {
				d.RejectionReason = l.catalog.DefaultRejectionReason
			}
		}
		return d
	}

	d.Steps = l.steps(ordering)

	if IsReadyForPickup(status) {
		d.PickupCode = order.PickupCode
	}

	if estimateStatuses[status] {
		d.ShowEstimate = true
		if order.EstimatedReadyAt != nil {
			at := *order.EstimatedReadyAt
			d.EstimatedReadyAt = &at
			if wait := at.Sub(now); wait > 0 {
				d.EstimatedWait = wait
			}
		}
	}

	return d
}

func (l *Lifecycle) steps(current int) []Step {
	steps := make([]Step, 0, len(l.catalog.Steps))
	for _, s := range l.catalog.Steps {
		step := Step{
			Key:         s.Key,
			Label:       s.Label,
			Description: s.Description,
			Ordering:    s.Ordering,
		}
		switch {
		case s.Ordering < current:
			step.State = StepCompleted
		case s.Ordering == current:
			step.State = StepCurrent
		default:
			step.State = StepPending
		}
		steps = append(steps, step)
	}
	return steps
}
