package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const deleteAllPlayers = `delete from players`

func (q *Queries) DeleteAllPlayers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllPlayers)
	return err
}

const countPlayers = `select count(*) from players`

func (q *Queries) CountPlayers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPlayers).Scan(&count)
	return count, err
}

type Player struct {
	RowIndex        int64
	Assists         *float64
	Games           *float64
	Goals           *float64
	ID              string
	KeyPasses       *float64
	Npg             *float64
	NpxG            *float64
	PlayerName      string
	Position        string
	RedCards        *float64
	Shots           *float64
	TeamTitle       string
	Time            *float64
	XA              *float64
	XG              *float64
	XGBuildup       *float64
	XGChain         *float64
	YellowCards     *float64
	League          string
	Year            int64
	Season          string
	PrimaryPosition sql.NullString
	ScrapeTimestamp sql.NullString
}

const insertPlayer = `insert into players (
    row_index, assists, games, goals, id, key_passes, npg, npxG,
    player_name, position, red_cards, shots, team_title, time, xA, xG,
    xGBuildup, xGChain, yellow_cards, league, year, season,
    primary_position, scrape_timestamp
) values (
    ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?, ?,
    ?, ?
)`

func (q *Queries) InsertPlayer(ctx context.Context, arg Player) error {
	_, err := q.db.ExecContext(ctx, insertPlayer,
		arg.RowIndex, arg.Assists, arg.Games, arg.Goals, arg.ID, arg.KeyPasses, arg.Npg, arg.NpxG,
		arg.PlayerName, arg.Position, arg.RedCards, arg.Shots, arg.TeamTitle, arg.Time, arg.XA, arg.XG,
		arg.XGBuildup, arg.XGChain, arg.YellowCards, arg.League, arg.Year, arg.Season,
		arg.PrimaryPosition, arg.ScrapeTimestamp,
	)
	return err
}

const listPlayers = `select
    row_index, assists, games, goals, id, key_passes, npg, npxG,
    player_name, position, red_cards, shots, team_title, time, xA, xG,
    xGBuildup, xGChain, yellow_cards, league, year, season,
    primary_position, scrape_timestamp
from players
order by row_index`

func (q *Queries) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.RowIndex, &i.Assists, &i.Games, &i.Goals, &i.ID, &i.KeyPasses, &i.Npg, &i.NpxG,
			&i.PlayerName, &i.Position, &i.RedCards, &i.Shots, &i.TeamTitle, &i.Time, &i.XA, &i.XG,
			&i.XGBuildup, &i.XGChain, &i.YellowCards, &i.League, &i.Year, &i.Season,
			&i.PrimaryPosition, &i.ScrapeTimestamp,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
