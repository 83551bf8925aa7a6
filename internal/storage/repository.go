package storage

import "gorm.io/gorm"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Cycle logs

func (r *Repository) SaveCycleLog(log *CycleLog) error {
	return r.db.Create(log).Error
}

func (r *Repository) RecentCycles(limit int) ([]CycleLog, error) {
	var logs []CycleLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// Snapshot records

func (r *Repository) SaveSnapshotRecord(record *SnapshotRecord) error {
	return r.db.Create(record).Error
}

func (r *Repository) LatestSnapshotRecord() (*SnapshotRecord, error) {
	var record SnapshotRecord
	err := r.db.Order("created_at DESC").First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) SnapshotHistory(limit int) ([]SnapshotRecord, error) {
	var records []SnapshotRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
