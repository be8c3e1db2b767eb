package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MacroSet groups the four tracked macro-nutrients plus hydration.
type MacroSet struct {
	Calories  float64 `bson:"calories" json:"calories"`
	Protein   float64 `bson:"protein" json:"protein"`
	Carbs     float64 `bson:"carbs" json:"carbs"`
	Fat       float64 `bson:"fat" json:"fat"`
	Hydration float64 `bson:"hydration" json:"hydration"` // millilitres
}

// DietSettings holds a client's running daily counters and targets.
// Current values are mutated in place during the day; when a new
// calendar day is first observed for the client, yesterday's values are
// archived into a DailyDietSummary and the counters zeroed. The check
// happens lazily on access, not via a background scheduler.
type DietSettings struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID `bson:"clientId" json:"clientId"`
	Current       MacroSet           `bson:"current" json:"current"`
	Target        MacroSet           `bson:"target" json:"target"`
	LastResetDate time.Time          `bson:"lastResetDate" json:"lastResetDate"` // UTC midnight
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DailyDietSummary is the archived copy of one finished day, unique per
// (client, date). Days with nothing tracked leave no summary, so a
// missing summary reads as a zero score.
type DailyDietSummary struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Date      time.Time          `bson:"date" json:"date"` // UTC midnight
	Current   MacroSet           `bson:"current" json:"current"`
	Target    MacroSet           `bson:"target" json:"target"`
	Score     int                `bson:"score" json:"score"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
