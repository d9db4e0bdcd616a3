// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/harelmarin/CultureClash/models"
)

// GormPostgreSQL is the GORM-backed Database implementation.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormUser{},
		&models.GormQuestion{},
		&models.GormChoice{},
		&models.GormMatch{},
	)
}

func (p *GormPostgreSQL) UserExists(id string) (bool, error) {
	var count int64
	err := p.db.Model(&models.GormUser{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (p *GormPostgreSQL) GetUser(id string) (*models.User, error) {
	var user models.GormUser
	if err := p.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return user.ToUser(), nil
}

// SampleQuestions returns n random questions with their choices.
func (p *GormPostgreSQL) SampleQuestions(n int) ([]models.Question, error) {
	var rows []models.GormQuestion
	err := p.db.Preload("Choices").Order("RANDOM()").Limit(n).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, rows[i].ToQuestion())
	}
	return questions, nil
}

func (p *GormPostgreSQL) CreateMatch(id, playerOneID, playerTwoID string, questionIDs []string) (*models.Match, error) {
	match := models.GormMatch{
		ID:          id,
		PlayerOneID: playerOneID,
		PlayerTwoID: playerTwoID,
		Status:      string(models.StatusPending),
	}
	for _, qid := range questionIDs {
		match.Questions = append(match.Questions, models.GormQuestion{ID: qid})
	}

	// Omit the question rows themselves, only the join table is written.
	if err := p.db.Omit("Questions.*").Create(&match).Error; err != nil {
		return nil, err
	}

	var created models.GormMatch
	if err := p.db.Preload("Questions.Choices").First(&created, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return created.ToMatch(), nil
}

func (p *GormPostgreSQL) FinishMatch(result *MatchResult) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"player_one_score": result.PlayerOneScore,
			"player_two_score": result.PlayerTwoScore,
			"status":           string(models.StatusFinished),
		}
		if result.WinnerID != "" {
			updates["winner_id"] = result.WinnerID
		}
		res := tx.Model(&models.GormMatch{}).Where("id = ?", result.MatchID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}

		if err := p.commitPlayer(tx, result.PlayerOneID, result.PlayerOnePoints, result.WinnerID); err != nil {
			return err
		}
		return p.commitPlayer(tx, result.PlayerTwoID, result.PlayerTwoPoints, result.WinnerID)
	})
}

func (p *GormPostgreSQL) commitPlayer(tx *gorm.DB, userID string, points int, winnerID string) error {
	updates := map[string]interface{}{"points": points}
	switch winnerID {
	case "":
		// draw, counters untouched
	case userID:
		updates["victories"] = gorm.Expr("victories + 1")
	default:
		updates["defeats"] = gorm.Expr("defeats + 1")
	}
	return tx.Model(&models.GormUser{}).Where("id = ?", userID).Updates(updates).Error
}

func (p *GormPostgreSQL) GetPlayerStats(userID string) (*models.PlayerStats, error) {
	user, err := p.GetUser(userID)
	if err != nil {
		return nil, err
	}

	var total int64
	err = p.db.Model(&models.GormMatch{}).
		Where("(player_one_id = ? OR player_two_id = ?) AND status = ?",
			userID, userID, string(models.StatusFinished)).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	return &models.PlayerStats{
		TotalGames: int(total),
		Wins:       user.Victories,
		Losses:     user.Defeats,
		Points:     user.Points,
	}, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
