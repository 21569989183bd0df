package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitryne/internal/domain/nutrition"
)

const estimatesCollection = "nutrition_estimates"

type EstimateRepository struct {
	col *mongo.Collection
}

func NewEstimateRepository(ctx context.Context, db *mongo.Database) (*EstimateRepository, error) {
	col := db.Collection(estimatesCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "trainee_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("trainee_recent"),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("mongo: index %s: %w", estimatesCollection, err)
	}
	return &EstimateRepository{col: col}, nil
}

// Save inserts or replaces the estimate by id.
func (r *EstimateRepository) Save(ctx context.Context, e *nutrition.Estimate) error {
	doc := newEstimateDocument(e)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *EstimateRepository) ListByTrainee(ctx context.Context, traineeID string, limit int) ([]*nutrition.Estimate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"trainee_id": traineeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*nutrition.Estimate
	for cur.Next(ctx) {
		var doc estimateDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type estimateDocument struct {
	ID         string          `bson:"_id"`
	TraineeID  string          `bson:"trainee_id"`
	Source     string          `bson:"source"`
	Input      inputDocument   `bson:"input"`
	Result     *resultDocument `bson:"result,omitempty"`
	AICalories string          `bson:"ai_calories,omitempty"`
	CreatedAt  int64           `bson:"created_at"`
}

type inputDocument struct {
	Age           int     `bson:"age"`
	Gender        string  `bson:"gender"`
	WeightKg      float64 `bson:"weight_kg"`
	HeightCm      float64 `bson:"height_cm"`
	ActivityLevel string  `bson:"activity_level"`
	Goal          string  `bson:"goal"`
}

type resultDocument struct {
	BMR            int `bson:"bmr"`
	TDEE           int `bson:"tdee"`
	TargetCalories int `bson:"target_calories"`
	ProteinGrams   int `bson:"protein_g"`
	CarbGrams      int `bson:"carbs_g"`
	FatGrams       int `bson:"fat_g"`
}

func newEstimateDocument(e *nutrition.Estimate) estimateDocument {
	doc := estimateDocument{
		ID:        string(e.ID),
		TraineeID: e.TraineeID,
		Source:    string(e.Source),
		Input: inputDocument{
			Age:           e.Input.Age,
			Gender:        string(e.Input.Gender),
			WeightKg:      e.Input.WeightKg,
			HeightCm:      e.Input.HeightCm,
			ActivityLevel: string(e.Input.ActivityLevel),
			Goal:          string(e.Input.Goal),
		},
		AICalories: e.AICalories,
		CreatedAt:  e.CreatedAt.UnixMilli(),
	}
	if e.Source == nutrition.SourceFormula {
		doc.Result = &resultDocument{
			BMR:            e.Result.BMR,
			TDEE:           e.Result.TDEE,
			TargetCalories: e.Result.TargetCalories,
			ProteinGrams:   e.Result.ProteinGrams,
			CarbGrams:      e.Result.CarbGrams,
			FatGrams:       e.Result.FatGrams,
		}
	}
	return doc
}

func (d estimateDocument) toAggregate() *nutrition.Estimate {
	e := &nutrition.Estimate{
		ID:        nutrition.EstimateID(d.ID),
		TraineeID: d.TraineeID,
		Source:    nutrition.Source(d.Source),
		Input: nutrition.BiometricInput{
			Age:           d.Input.Age,
			Gender:        nutrition.Gender(d.Input.Gender),
			WeightKg:      d.Input.WeightKg,
			HeightCm:      d.Input.HeightCm,
			ActivityLevel: nutrition.ActivityLevel(d.Input.ActivityLevel),
			Goal:          nutrition.Goal(d.Input.Goal),
		},
		AICalories: d.AICalories,
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
	if d.Result != nil {
		e.Result = nutrition.CalorieResult{
			BMR:            d.Result.BMR,
			TDEE:           d.Result.TDEE,
			TargetCalories: d.Result.TargetCalories,
			ProteinGrams:   d.Result.ProteinGrams,
			CarbGrams:      d.Result.CarbGrams,
			FatGrams:       d.Result.FatGrams,
		}
	}
	return e
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ nutrition.EstimateRepository = (*EstimateRepository)(nil)
