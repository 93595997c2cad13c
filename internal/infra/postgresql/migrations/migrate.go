package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/draftops/outreach-engine/internal/domain"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_draft_records",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.DraftRecord{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_draft_records_domain ON draft_records (domain)`,
					`CREATE INDEX IF NOT EXISTS idx_draft_records_created_at ON draft_records (created_at)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.DraftRecord{})
			},
		},
	})

	return m.Migrate()
}
