package lifecycle

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var ErrInvalidCatalog = errors.New("invalid lifecycle catalog")

type StepCopy struct {
	Ordering    int    `yaml:"ordering"`
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type AbnormalCopy struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// Catalog 訂單進度的顯示文案
type Catalog struct {
	DefaultRejectionReason string                             `yaml:"default_rejection_reason"`
	Steps                  []StepCopy                         `yaml:"steps"`
	Abnormal               map[model.OrderStatus]AbnormalCopy `yaml:"abnormal"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := parseCatalog(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded lifecycle catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalog 讀取自訂文案
//
// 錯誤:
//   - ErrInvalidCatalog: 缺少步驟或步驟 ordering 不在 1..5
func LoadCatalog(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parseCatalog(b)
}

func parseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(c.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidCatalog)
	}
	for _, s := range c.Steps {
		if s.Ordering < OrderingFallback || s.Ordering > OrderingCompleted {
			return nil, fmt.Errorf("%w: step %q has ordering %d", ErrInvalidCatalog, s.Key, s.Ordering)
		}
	}
	sort.SliceStable(c.Steps, func(i, j int) bool { return c.Steps[i].Ordering < c.Steps[j].Ordering })
	return &c, nil
}

func (c *Catalog) abnormalView(status model.OrderStatus) AbnormalView {
	if v, ok := c.Abnormal[status]; ok {
		return AbnormalView{Title: v.Title, Message: v.Message}
	}
	return AbnormalView{Title: string(status)}
}
