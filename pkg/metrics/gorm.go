package metrics

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const startKey = "elitetable:metrics_start"

// GormPlugin times every GORM statement into DBQueryDuration.
type GormPlugin struct{}

func (GormPlugin) Name() string { return "elitetable:metrics" }

func (GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	type registrar struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}
	regs := []registrar{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}
	for _, reg := range regs {
		op := reg.op
		if err := reg.before("metrics:before_"+op, startTimer); err != nil {
			return err
		}
		if err := reg.after("metrics:after_"+op, func(tx *gorm.DB) { observe(tx, op) }); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(startKey, time.Now())
}

func observe(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(startKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	ObserveDBQuery(op, table, start)
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		DBErrors.WithLabelValues(op).Inc()
	}
}
