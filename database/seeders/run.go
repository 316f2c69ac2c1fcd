// Package seeders loads the demo fixtures.
//
// Seeders are registered in foreign-key order and run in one transaction.
// Every fixture row has a deterministic ID and is upserted on its natural
// key, so running the seeders again updates rows in place instead of
// duplicating them:
//
//	counts, err := seeders.RunAll(ctx, database.DB, os.Stdout)
package seeders

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeederFunc writes one table's fixtures and reports how many rows it
// upserted.
type SeederFunc func(ctx context.Context, b *Batch) (int, error)

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register appends a seeder. Registration order is execution order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists the registered seeders in execution order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// RunAll executes every seeder inside one transaction and returns the row
// count per seeder. Progress lines go to out.
func RunAll(ctx context.Context, db *gorm.DB, out io.Writer) (map[string]int, error) {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	counts := make(map[string]int, len(current))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b := &Batch{tx: tx, ids: map[string]string{}}
		for _, e := range current {
			fmt.Fprintf(out, "  • Seeding %s … ", e.name)
			n, err := e.fn(ctx, b)
			if err != nil {
				fmt.Fprintln(out, "FAILED")
				return fmt.Errorf("seeder %q: %w", e.name, err)
			}
			counts[e.name] = n
			fmt.Fprintf(out, "%d\n", n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// namespace scopes every fixture ID.
var namespace = uuid.MustParse("5b0f2d2e-8f3c-4e47-9a8c-6c1d3c7e9b10")

// FixtureID is the deterministic ID of fixture key in table.
func FixtureID(table, key string) string {
	return uuid.NewSHA1(namespace, []byte(table+":"+key)).String()
}

// Batch is the state of one seeding pass: the transaction and the IDs
// already resolved by earlier seeders.
type Batch struct {
	tx  *gorm.DB
	ids map[string]string
}

// ID returns the stored ID of a fixture written earlier in this pass.
func (b *Batch) ID(table, key string) (string, error) {
	id, ok := b.ids[table+":"+key]
	if !ok {
		return "", fmt.Errorf("fixture %s %q not seeded yet", table, key)
	}
	return id, nil
}

func (b *Batch) remember(table, key, id string) { b.ids[table+":"+key] = id }

// upsert inserts row or, when a row with the same natural key exists,
// updates the listed columns. The row is then reloaded by its natural key
// so row carries the ID actually stored.
func upsert[T any](b *Batch, row *T, keys map[string]any, update ...string) error {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	cols := make([]clause.Column, len(names))
	for i, k := range names {
		cols[i] = clause.Column{Name: k}
	}
	onConflict := clause.OnConflict{Columns: cols, DoNothing: len(update) == 0}
	if len(update) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(update)
	}
	if err := b.tx.Clauses(onConflict).Omit(clause.Associations).Create(row).Error; err != nil {
		return err
	}
	// Reload into a fresh value: a set primary key would otherwise become
	// part of the lookup.
	var stored T
	if err := b.tx.Where(keys).Take(&stored).Error; err != nil {
		return err
	}
	*row = stored
	return nil
}
