package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// dateLayout is the calendar-day format used in URLs, request bodies and date columns.
const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// String returns the date as YYYY-MM-DD.
func (d DateOnly) String() string {
	return d.Time.Format(dateLayout)
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. Password is hidden from JSON responses.
type user struct {
	ID        string     `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Name      string     `json:"name" db:"name"`
	Password  string     `json:"-" db:"password"`
	AvatarURL string     `json:"avatarUrl" db:"avatar_url"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

// profile maps to the profiles table: one row per user holding the
// anthropometrics and calorie goal every stats computation starts from.
// JSON names keep the camelCase the frontend already sends.
type profile struct {
	UserID    string     `json:"user_id"   db:"user_id"`
	Name      string     `json:"name"      db:"name"`
	Weight    float64    `json:"weight"    db:"weight"`
	HeightCM  float64    `json:"heightCm"  db:"height_cm"`
	Age       int        `json:"age"       db:"age"`
	Gender    string     `json:"gender"    db:"gender"`
	CalTarget int        `json:"calTarget" db:"cal_target"`
	GoalKG    float64    `json:"goalKg"    db:"goal_kg"`
	AvatarURL string     `json:"avatarUrl" db:"avatar_url"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

// weightLogEntry maps to weight_logs. Append-only; a date can hold several entries.
type weightLogEntry struct {
	ID       string     `json:"id"        db:"id"`
	UserID   string     `json:"user_id"   db:"user_id"`
	Weight   float64    `json:"weight"    db:"weight"`
	Date     DateOnly   `json:"date"      db:"date"`
	LoggedAt *time.Time `json:"timestamp" db:"logged_at"`
}

// workoutEntry maps to workouts. Calories are kcal burned.
type workoutEntry struct {
	ID       string     `json:"id"        db:"id"`
	UserID   string     `json:"user_id"   db:"user_id"`
	Type     string     `json:"type"      db:"type"`
	Duration int        `json:"duration"  db:"duration"`
	Calories int        `json:"calories"  db:"calories"`
	Notes    string     `json:"notes"     db:"notes"`
	Date     DateOnly   `json:"date"      db:"date"`
	LoggedAt *time.Time `json:"timestamp" db:"logged_at"`
}

// stepsEntry maps to steps; the primary key is (user_id, date).
type stepsEntry struct {
	UserID    string     `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	Steps     int        `json:"steps"      db:"steps"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// waterEntry maps to water; the primary key is (user_id, date).
type waterEntry struct {
	UserID    string     `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	Glasses   int        `json:"glasses"    db:"glasses"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// nutritionSource values recorded on a nutrition entry.
const (
	nutritionSourceManual = "manual"
	nutritionSourceCopied = "copied_from_yesterday"
)

// nutritionMeal is one element of the meals jsonb array.
type nutritionMeal struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// nutritionTotals is the day's summed intake, stored as the total jsonb column.
type nutritionTotals struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
}

// nutritionEntry maps to nutrition; the primary key is (user_id, date).
type nutritionEntry struct {
	UserID    string          `json:"user_id"    db:"user_id"`
	Date      DateOnly        `json:"date"       db:"date"`
	Meals     []nutritionMeal `json:"meals"      db:"meals"`
	Total     nutritionTotals `json:"total"      db:"total"`
	Source    string          `json:"source"     db:"source"`
	UpdatedAt *time.Time      `json:"updated_at" db:"updated_at"`
}

// measurementEntry maps to measurements. All circumferences are optional (cm).
type measurementEntry struct {
	ID       string     `json:"id"        db:"id"`
	UserID   string     `json:"user_id"   db:"user_id"`
	Waist    *float64   `json:"waist"     db:"waist"`
	Chest    *float64   `json:"chest"     db:"chest"`
	Hips     *float64   `json:"hips"      db:"hips"`
	Arms     *float64   `json:"arms"      db:"arms"`
	Date     DateOnly   `json:"date"      db:"date"`
	LoggedAt *time.Time `json:"timestamp" db:"logged_at"`
}

// bodyCompReading maps to body_compositions, one row per Navy-method calculation.
type bodyCompReading struct {
	ID       string     `json:"id"        db:"id"`
	UserID   string     `json:"user_id"   db:"user_id"`
	BodyFat  float64    `json:"body_fat"  db:"body_fat"`
	Category string     `json:"category"  db:"category"`
	Waist    float64    `json:"waist"     db:"waist"`
	Neck     float64    `json:"neck"      db:"neck"`
	Hip      *float64   `json:"hip"       db:"hip"`
	Date     DateOnly   `json:"date"      db:"date"`
	LoggedAt *time.Time `json:"timestamp" db:"logged_at"`
}

// progressPhoto maps to progress_photos. URL is derived from FileKey.
type progressPhoto struct {
	ID       string     `json:"id"        db:"id"`
	UserID   string     `json:"user_id"   db:"user_id"`
	FileKey  string     `json:"file_id"   db:"file_key"`
	Date     DateOnly   `json:"date"      db:"date"`
	LoggedAt *time.Time `json:"timestamp" db:"logged_at"`
	URL      string     `json:"url"       db:"-"`
}

// pushSubscription maps to push_subscriptions, one browser subscription per user.
type pushSubscription struct {
	UserID    string            `json:"user_id"    db:"user_id"`
	Endpoint  string            `json:"endpoint"   db:"endpoint"`
	Keys      map[string]string `json:"keys"       db:"keys"`
	CreatedAt *time.Time        `json:"created_at" db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// updateProfileRequest is the body for PUT /api/profile. All fields are
// pointers; only non-nil fields get written to the database.
type updateProfileRequest struct {
	Name      *string  `json:"name"`
	Weight    *float64 `json:"weight"`
	HeightCM  *float64 `json:"heightCm"`
	Age       *int     `json:"age"`
	Gender    *string  `json:"gender"`
	CalTarget *int     `json:"calTarget"`
	GoalKG    *float64 `json:"goalKg"`
	AvatarURL *string  `json:"avatarUrl"`
}

// createWorkoutRequest is the body for POST /api/workouts. Date defaults to today.
type createWorkoutRequest struct {
	Type     string  `json:"type"`
	Duration int     `json:"duration"`
	Calories int     `json:"calories"`
	Notes    string  `json:"notes"`
	Date     *string `json:"date"`
}

// manualNutritionRequest is the body for POST /api/nutrition/manual.
// Mode "macros" derives calories from carbs/protein/fat; anything else uses Calories.
type manualNutritionRequest struct {
	Mode     string        `json:"mode"`
	Calories optionalFloat `json:"calories"`
	Carbs    optionalFloat `json:"carbs"`
	Protein  optionalFloat `json:"protein"`
	Fat      optionalFloat `json:"fat"`
	Date     *string       `json:"date"`
}

// bodyCompRequest is the body for POST /api/body-composition. Hip is required
// for an accurate female estimate.
type bodyCompRequest struct {
	Waist float64  `json:"waist"`
	Neck  float64  `json:"neck"`
	Hip   *float64 `json:"hip"`
}
