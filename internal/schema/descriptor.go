// Package schema carries the static description of the academy database that
// is handed to the language model when generating SQL.
package schema

import (
	"sort"
	"strings"
)

// Table describes one table for prompt construction. Columns holds
// "name type" pairs the way they appear in the live schema; Notes carries
// hints the model needs to query the table correctly.
type Table struct {
	Name    string
	Purpose string
	Columns []string
	Notes   string
}

// Descriptor is the full schema handed to SQL generation. It is a fixed
// snapshot, not introspected at runtime, so prompts stay deterministic.
type Descriptor struct {
	tables []Table
}

// Default returns the academy schema descriptor.
func Default() *Descriptor {
	return &Descriptor{tables: academyTables}
}

// Tables returns table names in alphabetical order.
func (d *Descriptor) Tables() []string {
	names := make([]string, 0, len(d.tables))
	for _, table := range d.tables {
		names = append(names, table.Name)
	}
	sort.Strings(names)
	return names
}

// Text renders the descriptor as the schema block embedded in prompts.
func (d *Descriptor) Text() string {
	var b strings.Builder
	b.WriteString("Database schema (PostgreSQL):\n")
	for _, table := range d.tables {
		b.WriteString("\nTable ")
		b.WriteString(table.Name)
		b.WriteString(" - ")
		b.WriteString(table.Purpose)
		b.WriteString("\n")
		for _, column := range table.Columns {
			b.WriteString("  ")
			b.WriteString(column)
			b.WriteString("\n")
		}
		if table.Notes != "" {
			b.WriteString("  Note: ")
			b.WriteString(table.Notes)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var academyTables = []Table{
	{
		Name:    "users",
		Purpose: "accounts for players, coaches and staff",
		Columns: []string{
			"id integer primary key",
			"email text",
			"first_name text",
			"last_name text",
			"role text",
			"created_at timestamp",
		},
	},
	{
		Name:    "players",
		Purpose: "player profiles",
		Columns: []string{
			"id integer primary key",
			"user_id integer references users(id)",
			"date_of_birth date",
			"height_cm integer",
			"weight_kg integer",
			"preferred_position text",
			"preferred_foot text",
		},
		Notes: "age is not stored; derive it from date_of_birth with date arithmetic",
	},
	{
		Name:    "teams",
		Purpose: "academy teams by age group",
		Columns: []string{
			"id integer primary key",
			"name text",
			"age_group text",
			"coach_id integer references users(id)",
			"season text",
		},
	},
	{
		Name:    "games",
		Purpose: "matches played by academy teams",
		Columns: []string{
			"id integer primary key",
			"team_id integer references teams(id)",
			"opponent text",
			"played_at timestamp",
			"goals_for integer",
			"goals_against integer",
			"result text",
		},
	},
	{
		Name:    "player_evaluations",
		Purpose: "periodic coach evaluations",
		Columns: []string{
			"id integer primary key",
			"player_id integer references players(id)",
			"coach_id integer references users(id)",
			"evaluated_at date",
			"category text",
			"grade integer",
			"comments text",
		},
		Notes: "grade runs 1 to 10",
	},
	{
		Name:    "player_game_stats",
		Purpose: "per-player statistics for each game",
		Columns: []string{
			"id integer primary key",
			"player_id integer references players(id)",
			"game_id integer references games(id)",
			"minutes_played integer",
			"goals integer",
			"assists integer",
			"yellow_cards integer",
			"red_cards integer",
		},
	},
	{
		Name:    "metrics",
		Purpose: "physical test measurements",
		Columns: []string{
			"id integer primary key",
			"player_id integer references players(id)",
			"measured_at date",
			"metric_name text",
			"metric_value numeric",
			"unit text",
		},
	},
	{
		Name:    "player_assessments",
		Purpose: "structured skill assessments",
		Columns: []string{
			"id integer primary key",
			"player_id integer references players(id)",
			"assessed_at date",
			"skill text",
			"rating integer",
			"notes text",
		},
	},
	{
		Name:    "player_teams",
		Purpose: "player to team membership by season",
		Columns: []string{
			"player_id integer references players(id)",
			"team_id integer references teams(id)",
			"joined_at date",
			"left_at date",
		},
	},
}
