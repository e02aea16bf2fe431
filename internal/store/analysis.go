package store

import (
	"database/sql"
	"fmt"
	"time"
)

type AnalysisRecord struct {
	ID            int64     `json:"id"`
	FoodName      string    `json:"food_name"`
	Confidence    float64   `json:"confidence"`
	LowConfidence bool      `json:"low_confidence"`
	ImageName     string    `json:"image_name"`
	ResultJSON    string    `json:"-"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

func SaveAnalysis(db *sql.DB, rec AnalysisRecord) (int64, error) {
	if rec.FoodName == "" {
		return 0, fmt.Errorf("food name is required")
	}
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now()
	}
	res, err := db.Exec(`
INSERT INTO analysis_log(food_name, confidence, low_confidence, image_name, result_json, analyzed_at)
VALUES(?, ?, ?, ?, ?, ?)
`, rec.FoodName, rec.Confidence, boolToInt(rec.LowConfidence), rec.ImageName, rec.ResultJSON, rec.AnalyzedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("analysis id: %w", err)
	}
	return id, nil
}

func GetAnalysis(db *sql.DB, id int64) (AnalysisRecord, error) {
	row := db.QueryRow(`
SELECT id, food_name, confidence, low_confidence, image_name, result_json, analyzed_at
FROM analysis_log WHERE id = ?
`, id)
	rec, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return AnalysisRecord{}, fmt.Errorf("analysis %d not found", id)
	}
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("get analysis %d: %w", id, err)
	}
	return rec, nil
}

func ListAnalyses(db *sql.DB, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
SELECT id, food_name, confidence, low_confidence, image_name, result_json, analyzed_at
FROM analysis_log ORDER BY analyzed_at DESC, id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()
	var out []AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(r rowScanner) (AnalysisRecord, error) {
	var rec AnalysisRecord
	var low int
	var analyzedAt string
	if err := r.Scan(&rec.ID, &rec.FoodName, &rec.Confidence, &low, &rec.ImageName, &rec.ResultJSON, &analyzedAt); err != nil {
		return AnalysisRecord{}, err
	}
	rec.LowConfidence = low == 1
	t, err := time.Parse(time.RFC3339, analyzedAt)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("parse analyzed_at %q: %w", analyzedAt, err)
	}
	rec.AnalyzedAt = t.Local()
	return rec, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
