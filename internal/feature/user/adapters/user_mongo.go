package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/feature/user/usecase"
)

// UsersCollection はユーザードキュメントを保存するコレクション名です。
const UsersCollection = "users"

// maxIncrementAttempts は当日レコードの作成が競合した場合の再試行回数です。
const maxIncrementAttempts = 3

// userMongo はStoreインターフェースのMongoDB実装です。
// 使用量とメトリクスはユーザードキュメントに埋め込まれ、更新は単一ドキュメントへのアトミック操作で行います。
type userMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ usecase.Store = (*userMongo)(nil)

// NewUserMongo は指定されたデータベースのusersコレクションを使うuserMongoを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(UsersCollection), now: time.Now}
}

// EnsureIndexes はclerkIdとemailの一意インデックスを作成します。起動時に一度呼び出してください。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clerkId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return translateMongoError(err)
}

func (r *userMongo) FindByIdentity(ctx context.Context, clerkID string) (*entity.User, error) {
	doc, err := r.find(ctx, clerkID)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return domain.ErrValidation
	}
	if err := u.Validate(); err != nil {
		return err
	}

	now := r.now()
	doc := documentFromEntity(u)
	doc.CreatedAt, doc.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			n, cErr := r.coll.CountDocuments(ctx, bson.M{"clerkId": u.ClerkID})
			if cErr == nil && n > 0 {
				return domain.ErrDuplicateIdentity
			}
		}
		return translateMongoError(err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *userMongo) Save(ctx context.Context, u *entity.User) error {
	if u == nil {
		return domain.ErrValidation
	}
	if err := u.Validate(); err != nil {
		return err
	}

	doc := documentFromEntity(u)
	set := bson.M{
		"email":            doc.Email,
		"firstName":        doc.FirstName,
		"lastName":         doc.LastName,
		"photo":            doc.Photo,
		"subscriptionPlan": doc.SubscriptionPlan,
		"usage":            doc.Usage,
		"metrics":          doc.Metrics,
		"updatedAt":        r.now(),
	}
	update := bson.M{"$set": set}
	if doc.SubscriptionDetails != nil {
		set["subscriptionDetails"] = doc.SubscriptionDetails
	} else {
		update["$unset"] = bson.M{"subscriptionDetails": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"clerkId": u.ClerkID}, update)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// IncrementUsage は当日の使用量を1件加算します。
// 既存レコードは位置指定の$incで、未作成の日は当日キーが無いことを条件にした$pushで追加します。
// どちらも一致しなかった場合は再読込して、上限到達・有料プラン・競合のいずれかを判定します。
func (r *userMongo) IncrementUsage(ctx context.Context, clerkID string, day time.Time, limit int, metric entity.Metric) (entity.UsageResult, error) {
	day = entity.StartOfDay(day.In(time.Local))
	key := entity.DayKey(day)

	doc, err := r.find(ctx, clerkID)
	if err != nil {
		return entity.UsageResult{}, err
	}
	if doc == nil {
		return entity.UsageResult{}, domain.ErrUserNotFound
	}

	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		res := entity.UsageResult{Plan: entity.Plan(doc.SubscriptionPlan)}
		if res.Plan.IsPaid() {
			return res, nil
		}

		inc := bson.M{"usage.$.transactionCount": 1}
		if field, ok := metricFields[metric]; ok {
			inc[field] = 1
		}
		match := bson.M{"day": key}
		if limit > 0 {
			match["transactionCount"] = bson.M{"$lt": limit}
		}
		filter := bson.M{
			"clerkId":          clerkID,
			"subscriptionPlan": string(entity.PlanFree),
			"usage":            bson.M{"$elemMatch": match},
		}
		var updated userDocument
		err := r.coll.FindOneAndUpdate(ctx, filter,
			bson.M{"$inc": inc, "$set": bson.M{"updatedAt": r.now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		switch {
		case err == nil:
			res.Applied = true
			res.Count, _ = updated.countOn(key)
			return res, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return entity.UsageResult{}, translateMongoError(err)
		}

		push := bson.M{
			"$push": bson.M{"usage": usageDocument{Day: key, Date: day, TransactionCount: 1}},
			"$set":  bson.M{"updatedAt": r.now()},
		}
		if field, ok := metricFields[metric]; ok {
			push["$inc"] = bson.M{field: 1}
		}
		pushed, err := r.coll.UpdateOne(ctx, bson.M{
			"clerkId":          clerkID,
			"subscriptionPlan": string(entity.PlanFree),
			"usage.day":        bson.M{"$ne": key},
		}, push)
		if err != nil {
			return entity.UsageResult{}, translateMongoError(err)
		}
		if pushed.MatchedCount > 0 {
			res.Applied = true
			res.Count = 1
			return res, nil
		}

		doc, err = r.find(ctx, clerkID)
		if err != nil {
			return entity.UsageResult{}, err
		}
		if doc == nil {
			return entity.UsageResult{}, domain.ErrUserNotFound
		}
		if count, ok := doc.countOn(key); ok && limit > 0 && count >= limit && !entity.Plan(doc.SubscriptionPlan).IsPaid() {
			return entity.UsageResult{Plan: entity.PlanFree, Count: count}, nil
		}
	}
	return entity.UsageResult{}, fmt.Errorf("increment usage for %s: too much contention", clerkID)
}

// DecrementUsage はIncrementUsageで加算した1件を取り消します。
// 当日の件数とメトリクスは1回のパイプライン更新で減らすため、片方だけが反映されることはありません。
// どちらも0未満にはなりません。
func (r *userMongo) DecrementUsage(ctx context.Context, clerkID string, day time.Time, metric entity.Metric) error {
	key := entity.DayKey(entity.StartOfDay(day.In(time.Local)))

	set := bson.D{
		{Key: "usage", Value: bson.M{"$map": bson.M{
			"input": bson.M{"$ifNull": bson.A{"$usage", bson.A{}}},
			"as":    "u",
			"in": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$$u.day", key}},
					bson.M{"$gt": bson.A{"$$u.transactionCount", 0}},
				}},
				bson.M{"$mergeObjects": bson.A{"$$u", bson.M{
					"transactionCount": bson.M{"$subtract": bson.A{"$$u.transactionCount", 1}},
				}}},
				"$$u",
			}},
		}}},
		{Key: "updatedAt", Value: r.now()},
	}
	if field, ok := metricFields[metric]; ok {
		set = append(set, bson.E{Key: field, Value: bson.M{
			"$max": bson.A{0, bson.M{"$subtract": bson.A{bson.M{"$ifNull": bson.A{"$" + field, 0}}, 1}}},
		}})
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"clerkId": clerkID}, mongo.Pipeline{{{Key: "$set", Value: set}}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ApplySubscription はプランと契約情報を1回のfindAndModifyで更新します。
// 有料プランでは同じ更新で使用量とメトリクスもリセットされます。
func (r *userMongo) ApplySubscription(ctx context.Context, clerkID string, plan entity.Plan, details *entity.SubscriptionDetails) (*entity.User, error) {
	if !plan.Valid() {
		return nil, domain.ErrInvalidPlan
	}

	set := bson.M{"subscriptionPlan": string(plan), "updatedAt": r.now()}
	update := bson.M{"$set": set}
	if d := detailsDocument(details); d != nil {
		set["subscriptionDetails"] = d
	} else {
		update["$unset"] = bson.M{"subscriptionDetails": ""}
	}
	if plan.IsPaid() {
		set["usage"] = []usageDocument{}
		set["metrics"] = metricsDocument{}
	}

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"clerkId": clerkID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, translateMongoError(err)
	}
	return doc.toEntity(), nil
}

// find はドキュメントを取得します。存在しない場合は (nil, nil) を返します。
func (r *userMongo) find(ctx context.Context, clerkID string) (*userDocument, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"clerkId": clerkID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, translateMongoError(err)
	}
	return &doc, nil
}

// translateMongoError maps driver errors onto the domain taxonomy.
func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return translateError(err)
}
