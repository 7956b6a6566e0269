package uploads

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/glucolog-org/coach/store"
)

func NewRepository(db *mongo.Database, logger *zap.SugaredLogger, lifecycle fx.Lifecycle) (Repository, error) {
	repo := &repository{
		collection: db.Collection(CollectionName),
		logger:     logger,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.Initialize(ctx)
		},
	})

	return repo, nil
}

type repository struct {
	collection *mongo.Collection
	logger     *zap.SugaredLogger
}

func (r *repository) Initialize(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "createdTime", Value: -1},
			},
			Options: options.Index().
				SetName("UploadsByUser"),
		},
		{
			Keys: bson.D{
				{Key: "reportCode", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("UniqueReportCode"),
		},
	})
	return err
}

func (r *repository) Create(ctx context.Context, upload Upload) (*Upload, error) {
	res, err := r.collection.InsertOne(ctx, upload)
	if err != nil {
		return nil, err
	}

	id := res.InsertedID.(primitive.ObjectID)
	return r.Get(ctx, id.Hex())
}

func (r *repository) Get(ctx context.Context, id string) (*Upload, error) {
	objId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	upload := &Upload{}
	err = r.collection.FindOne(ctx, bson.M{"_id": objId}).Decode(upload)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return upload, nil
}

func (r *repository) List(ctx context.Context, filter *Filter, pagination store.Pagination) ([]*Upload, error) {
	opts := options.Find().
		SetLimit(int64(pagination.Limit)).
		SetSkip(int64(pagination.Offset)).
		SetSort(bson.D{{Key: "createdTime", Value: -1}})

	selector := bson.M{}
	if filter != nil && filter.UserId != nil {
		selector["userId"] = *filter.UserId
	}

	cursor, err := r.collection.Find(ctx, selector, opts)
	if err != nil {
		return nil, err
	}

	var uploads []*Upload
	if err = cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}

	return uploads, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	objId, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objId})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
