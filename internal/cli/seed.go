package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedFile is the YAML document read by `sensorctl seed`.
type SeedFile struct {
	Users    []SeedUser      `yaml:"users"`
	Channels []SeedChannel   `yaml:"channels"`
	Defaults []SeedThreshold `yaml:"defaults"`
}

type SeedUser struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	FirstName    string `yaml:"first_name"`
	LastName     string `yaml:"last_name"`
	Organisation string `yaml:"organisation"`
	Role         string `yaml:"role"`
}

type SeedChannel struct {
	ID         uint            `yaml:"id"`
	Name       string          `yaml:"name"`
	Latitude   float64         `yaml:"latitude"`
	Longitude  float64         `yaml:"longitude"`
	Fields     []string        `yaml:"fields"`
	Thresholds []SeedThreshold `yaml:"thresholds"`
}

type SeedThreshold struct {
	Field string  `yaml:"field"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Unit  string  `yaml:"unit"`
}

// SeedStats counts what a seed run touched.
type SeedStats struct {
	UsersCreated int
	Channels     int
	Thresholds   int
	Defaults     int
}

func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, channels and thresholds from a YAML file",
		Long: `Load users, channels and thresholds from a YAML file.

Seeding is idempotent: existing users are left alone, channels and
thresholds are updated in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seed SeedFile
			if err := yaml.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			db, err := opts.db()
			if err != nil {
				return err
			}
			stats, err := Seed(cmd.Context(), db, &seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users created: %d, channels: %d, channel thresholds: %d, defaults: %d\n",
				stats.UsersCreated, stats.Channels, stats.Thresholds, stats.Defaults)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file path")
	return cmd
}

// Seed applies a seed document.
func Seed(ctx context.Context, db *gorm.DB, seed *SeedFile) (*SeedStats, error) {
	stats := &SeedStats{}
	thresholds := services.NewThresholdService(db)

	for _, u := range seed.Users {
		created, err := seedUser(ctx, db, u)
		if err != nil {
			return nil, err
		}
		if created {
			stats.UsersCreated++
		}
	}

	for _, c := range seed.Channels {
		ch := models.Channel{ID: c.ID, Name: c.Name, Latitude: c.Latitude, Longitude: c.Longitude}
		labels := []*string{&ch.Field1, &ch.Field2, &ch.Field3, &ch.Field4, &ch.Field5, &ch.Field6, &ch.Field7, &ch.Field8}
		if len(c.Fields) > len(labels) {
			return nil, fmt.Errorf("channel %d: at most %d fields", c.ID, len(labels))
		}
		for i, f := range c.Fields {
			*labels[i] = f
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "latitude", "longitude",
				"field1", "field2", "field3", "field4", "field5", "field6", "field7", "field8",
				"updated_at",
			}),
		}).Create(&ch).Error
		if err != nil {
			return nil, fmt.Errorf("seed channel %d: %w", c.ID, err)
		}
		stats.Channels++

		if len(c.Thresholds) > 0 {
			saved, err := thresholds.Save(ctx, c.ID, thresholdInputs(c.Thresholds))
			if err != nil {
				return nil, fmt.Errorf("seed thresholds of channel %d: %w", c.ID, err)
			}
			stats.Thresholds += len(saved)
		}
	}

	if len(seed.Defaults) > 0 {
		if _, err := thresholds.SaveDefaults(ctx, thresholdInputs(seed.Defaults)); err != nil {
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		stats.Defaults = len(seed.Defaults)
	}
	return stats, nil
}

func seedUser(ctx context.Context, db *gorm.DB, u SeedUser) (bool, error) {
	role := models.UserRole(u.Role)
	if role == "" {
		role = models.RoleStandardUser
	}
	if !role.Valid() {
		return false, fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password of %s: %w", u.Email, err)
	}
	user := models.User{
		Email:        u.Email,
		Password:     string(hash),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organisation: u.Organisation,
		UserRole:     role,
		Status:       models.StatusActive,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	return true, nil
}

func thresholdInputs(in []SeedThreshold) []dto.ThresholdInput {
	out := make([]dto.ThresholdInput, 0, len(in))
	for _, t := range in {
		input := dto.ThresholdInput{
			FieldName: t.Field,
			MinValue:  dto.NewNumber(t.Min),
			MaxValue:  dto.NewNumber(t.Max),
		}
		if t.Unit != "" {
			unit := t.Unit
			input.Unit = &unit
		}
		out = append(out, input)
	}
	return out
}
