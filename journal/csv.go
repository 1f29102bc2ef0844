package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

// CSV appends trade records to a single CSV file. Persist is safe for
// concurrent use; csv.Writer is not, so writes are serialized here.
type CSV struct {
	mu   sync.Mutex
	w    *csv.Writer
	file *os.File
}

var _ Sink = (*CSV)(nil)

func NewCSV(path string) (*CSV, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(file)
	if err := w.Write([]string{"id", "ts", "symbol", "side", "qty", "price", "fees", "order_type", "status", "order_id"}); err != nil {
		file.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return nil, err
	}

	return &CSV{w: w, file: file}, nil
}

func (c *CSV) Persist(t TradeRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.w.Write([]string{
		t.ID,
		t.Time.Format(time.RFC3339),
		t.Symbol,
		string(t.Side),
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Fees),
		string(t.OrderType),
		string(t.Status),
		t.OrderID,
	})
	if err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return err
	}
	return c.file.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
