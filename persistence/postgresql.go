// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harelmarin/CultureClash/models"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgreSQL is the plain database/sql Database implementation, selectable
// with database.driver: sql. It expects the schema to exist already.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgreSQL{db: db}, nil
}

func (p *PostgreSQL) UserExists(id string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (p *PostgreSQL) GetUser(id string) (*models.User, error) {
	var u models.User
	var profilePic sql.NullString
	err := p.db.QueryRow(`
        SELECT id, email, username, COALESCE(profile_pic, ''), points, victories, defeats, created_at
        FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Username, &profilePic, &u.Points, &u.Victories, &u.Defeats, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ProfilePic = profilePic.String
	return &u, nil
}

func (p *PostgreSQL) SampleQuestions(n int) ([]models.Question, error) {
	rows, err := p.db.Query(`
        SELECT id, text, COALESCE(correct_answer_id, '')
        FROM questions ORDER BY RANDOM() LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectAnswerID); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		choices, err := p.questionChoices(questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Choices = choices
	}
	return questions, nil
}

func (p *PostgreSQL) questionChoices(questionID string) ([]models.Choice, error) {
	rows, err := p.db.Query(`
        SELECT id, text, is_correct FROM choices WHERE question_id = $1`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var choices []models.Choice
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.Text, &c.IsCorrect); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

func (p *PostgreSQL) CreateMatch(id, playerOneID, playerTwoID string, questionIDs []string) (*models.Match, error) {
	tx, err := p.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var createdAt time.Time
	err = tx.QueryRow(`
        INSERT INTO matchmaking_sessions (id, player_one_id, player_two_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING created_at`,
		id, playerOneID, playerTwoID, string(models.StatusPending)).Scan(&createdAt)
	if err != nil {
		return nil, err
	}

	for _, qid := range questionIDs {
		if _, err := tx.Exec(`
            INSERT INTO match_questions (gorm_match_id, gorm_question_id) VALUES ($1, $2)`,
			id, qid); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Match{
		ID:          id,
		PlayerOneID: playerOneID,
		PlayerTwoID: playerTwoID,
		Status:      models.StatusPending,
		CreatedAt:   createdAt,
	}, nil
}

func (p *PostgreSQL) FinishMatch(result *MatchResult) error {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var winner interface{}
	if result.WinnerID != "" {
		winner = result.WinnerID
	}
	res, err := tx.Exec(`
        UPDATE matchmaking_sessions
        SET player_one_score = $1, player_two_score = $2, winner_id = $3, status = $4, updated_at = NOW()
        WHERE id = $5`,
		result.PlayerOneScore, result.PlayerTwoScore, winner,
		string(models.StatusFinished), result.MatchID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}

	if err := commitPlayerSQL(tx, result.PlayerOneID, result.PlayerOnePoints, result.WinnerID); err != nil {
		return err
	}
	if err := commitPlayerSQL(tx, result.PlayerTwoID, result.PlayerTwoPoints, result.WinnerID); err != nil {
		return err
	}

	return tx.Commit()
}

func commitPlayerSQL(tx *sql.Tx, userID string, points int, winnerID string) error {
	var err error
	switch winnerID {
	case "":
		_, err = tx.Exec(`UPDATE users SET points = $1 WHERE id = $2`, points, userID)
	case userID:
		_, err = tx.Exec(`UPDATE users SET points = $1, victories = victories + 1 WHERE id = $2`, points, userID)
	default:
		_, err = tx.Exec(`UPDATE users SET points = $1, defeats = defeats + 1 WHERE id = $2`, points, userID)
	}
	return err
}

func (p *PostgreSQL) GetPlayerStats(userID string) (*models.PlayerStats, error) {
	user, err := p.GetUser(userID)
	if err != nil {
		return nil, err
	}

	var total int
	err = p.db.QueryRow(`
        SELECT COUNT(*) FROM matchmaking_sessions
        WHERE (player_one_id = $1 OR player_two_id = $1) AND status = $2`,
		userID, string(models.StatusFinished)).Scan(&total)
	if err != nil {
		return nil, err
	}

	return &models.PlayerStats{
		TotalGames: total,
		Wins:       user.Victories,
		Losses:     user.Defeats,
		Points:     user.Points,
	}, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
