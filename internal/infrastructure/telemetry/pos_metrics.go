package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsError describes a metrics setup failure.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPOSMetrics", Err: "meter cannot be nil"}

// StockAlertProvider reports how many variants are at or below their alert
// threshold. It lets the telemetry layer observe inventory health without
// depending on the inventory domain directly.
type StockAlertProvider interface {
	LowStockCount(ctx context.Context) (int64, error)
}

// POSMetrics tracks sales and inventory activity: settled and held orders,
// rejected checkouts, received batches and units sold.
type POSMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	ordersSettled     *Counter
	ordersHeld        *Counter
	insufficientStock *Counter
	unitsSold         *Counter
	orderAmount       *Counter
	batchesReceived   *Counter
	unitsReceived     *Counter

	lowStockVariants *Gauge

	stockProvider StockAlertProvider
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// POSMetricsConfig holds configuration for POS metrics.
type POSMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StockProvider   StockAlertProvider
}

// NewPOSMetrics creates a new POSMetrics instance.
func NewPOSMetrics(cfg POSMetricsConfig) (*POSMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &POSMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stockProvider: cfg.StockProvider,
		stopChan:      make(chan struct{}),
	}

	var err error
	pm.ordersSettled, err = NewCounter(cfg.Meter,
		"pos_orders_settled_total", "Total number of settled orders", "{orders}")
	if err != nil {
		return nil, err
	}
	pm.ordersHeld, err = NewCounter(cfg.Meter,
		"pos_orders_held_total", "Total number of orders placed on hold", "{orders}")
	if err != nil {
		return nil, err
	}
	pm.insufficientStock, err = NewCounter(cfg.Meter,
		"pos_insufficient_stock_total", "Total number of checkouts rejected for insufficient stock", "{rejections}")
	if err != nil {
		return nil, err
	}
	pm.unitsSold, err = NewCounter(cfg.Meter,
		"pos_units_sold_total", "Total units sold across settled orders", "{units}")
	if err != nil {
		return nil, err
	}
	pm.orderAmount, err = NewCounter(cfg.Meter,
		"pos_order_amount_total", "Total settled order amount in minor currency units", "{cents}")
	if err != nil {
		return nil, err
	}
	pm.batchesReceived, err = NewCounter(cfg.Meter,
		"pos_batches_received_total", "Total number of inventory batches received", "{batches}")
	if err != nil {
		return nil, err
	}
	pm.unitsReceived, err = NewCounter(cfg.Meter,
		"pos_units_received_total", "Total units received across inventory batches", "{units}")
	if err != nil {
		return nil, err
	}
	pm.lowStockVariants, err = NewGauge(cfg.Meter,
		"pos_low_stock_variants", "Number of variants at or below their alert threshold", "{variants}")
	if err != nil {
		return nil, err
	}

	if cfg.StockProvider != nil {
		interval := cfg.CollectInterval
		if interval == 0 {
			interval = 5 * time.Minute
		}
		pm.startCollector(interval)
	}

	return pm, nil
}

// RecordOrderSettled records a settled order with its payment method, total
// and unit count.
func (pm *POSMetrics) RecordOrderSettled(ctx context.Context, storeID, paymentMethod string, total decimal.Decimal, units int64) {
	attrs := []attribute.KeyValue{
		AttrStoreID.String(storeID),
		AttrPaymentMethod.String(paymentMethod),
	}
	pm.ordersSettled.Inc(ctx, attrs...)
	pm.unitsSold.Add(ctx, units, attrs...)
	pm.orderAmount.Add(ctx, total.Mul(decimal.NewFromInt(100)).IntPart(), attrs...)
}

// RecordOrderHeld records an order placed on hold.
func (pm *POSMetrics) RecordOrderHeld(ctx context.Context, storeID string) {
	pm.ordersHeld.Inc(ctx, AttrStoreID.String(storeID))
}

// RecordInsufficientStock records a checkout rejected for lack of stock.
func (pm *POSMetrics) RecordInsufficientStock(ctx context.Context, storeID string) {
	pm.insufficientStock.Inc(ctx, AttrStoreID.String(storeID))
}

// RecordBatchReceived records a received inventory batch and its unit count.
func (pm *POSMetrics) RecordBatchReceived(ctx context.Context, storeID string, units int64) {
	pm.batchesReceived.Inc(ctx, AttrStoreID.String(storeID))
	pm.unitsReceived.Add(ctx, units, AttrStoreID.String(storeID))
}

func (pm *POSMetrics) startCollector(interval time.Duration) {
	pm.wg.Add(1)
	go func() {
		defer pm.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pm.collectStockAlerts()
			case <-pm.stopChan:
				return
			}
		}
	}()
}

func (pm *POSMetrics) collectStockAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := pm.stockProvider.LowStockCount(ctx)
	if err != nil {
		pm.logger.Warn("low stock collection failed", zap.Error(err))
		return
	}
	pm.lowStockVariants.Record(ctx, count)
}

// Stop terminates the periodic collector. Safe to call more than once.
func (pm *POSMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
		pm.wg.Wait()
	})
}
