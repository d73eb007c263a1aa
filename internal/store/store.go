package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"understat-pipeline/internal/dataset"
	"understat-pipeline/internal/store/db"

	_ "modernc.org/sqlite"
)

// Store mirrors the combined table into sqlite so it can be queried ad hoc.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Open opens (creating if needed) the sqlite file at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	database.SetMaxOpenConns(1)

	_, err = database.ExecContext(ctx, db.Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

// ReplaceAll swaps the stored rows for the given table in one transaction,
// readers never see a partially written table.
func (s Store) ReplaceAll(ctx context.Context, table dataset.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteAllPlayers(ctx)
	if err != nil {
		return err
	}
	for i, rec := range table {
		err = txqry.InsertPlayer(ctx, toRow(int64(i), rec))
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load reads the stored table back in its original row order.
func (s Store) Load(ctx context.Context) (dataset.Table, error) {
	rows, err := s.qry.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	out := make(dataset.Table, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out, nil
}

func (s Store) Count(ctx context.Context) (int64, error) {
	return s.qry.CountPlayers(ctx)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toRow(index int64, r dataset.Record) db.Player {
	return db.Player{
		RowIndex:        index,
		Assists:         r.Assists,
		Games:           r.Games,
		Goals:           r.Goals,
		ID:              r.ID,
		KeyPasses:       r.KeyPasses,
		Npg:             r.Npg,
		NpxG:            r.NpxG,
		PlayerName:      r.PlayerName,
		Position:        r.Position,
		RedCards:        r.RedCards,
		Shots:           r.Shots,
		TeamTitle:       r.TeamTitle,
		Time:            r.Time,
		XA:              r.XA,
		XG:              r.XG,
		XGBuildup:       r.XGBuildup,
		XGChain:         r.XGChain,
		YellowCards:     r.YellowCards,
		League:          r.League,
		Year:            r.Year,
		Season:          r.Season,
		PrimaryPosition: nullString(r.PrimaryPosition),
		ScrapeTimestamp: nullString(r.ScrapeTimestamp),
	}
}

func fromRow(r db.Player) dataset.Record {
	return dataset.Record{
		Assists:         r.Assists,
		Games:           r.Games,
		Goals:           r.Goals,
		ID:              r.ID,
		KeyPasses:       r.KeyPasses,
		Npg:             r.Npg,
		NpxG:            r.NpxG,
		PlayerName:      r.PlayerName,
		Position:        r.Position,
		RedCards:        r.RedCards,
		Shots:           r.Shots,
		TeamTitle:       r.TeamTitle,
		Time:            r.Time,
		XA:              r.XA,
		XG:              r.XG,
		XGBuildup:       r.XGBuildup,
		XGChain:         r.XGChain,
		YellowCards:     r.YellowCards,
		League:          r.League,
		Year:            r.Year,
		Season:          r.Season,
		PrimaryPosition: r.PrimaryPosition.String,
		ScrapeTimestamp: r.ScrapeTimestamp.String,
	}
}
