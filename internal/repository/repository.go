package repository

import (
	"fmt"

	"github.com/yourusername/props-edge/internal/database"
)

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Player:   NewPostgresPlayerRepository(db),
		GameStat: NewPostgresGameStatRepository(db),
		PropLine: NewPostgresPropLineRepository(db),
		Bet:      NewPostgresBetRepository(db),
	}, nil
}
