package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"TASKTRACKER_BACK-END/internal/models"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	EmailKey     string    `bson:"email_key"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type taskDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	OwnerID     string    `bson:"owner_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// MongoStore implements Store on a MongoDB database with "users" and "tasks" collections
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

// OpenMongoStore connects to uri, verifies the connection and ensures indexes
func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, userDoc{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		EmailKey:     strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email_key": strings.ToLower(email)})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode user id %q: %w", doc.ID, err)
	}
	return &models.User{
		ID:           id,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         models.Role(doc.Role),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *MongoStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	doc := taskDoc{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		OwnerID:     task.OwnerID.String(),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return s.populate(ctx, doc, map[string]models.TaskOwner{})
}

func (s *MongoStore) ListTasks(ctx context.Context, filter TaskFilter, offset, limit int) ([]models.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.tasks.Find(ctx, taskQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	owners := make(map[string]models.TaskOwner)
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		t, err := s.populate(ctx, doc, owners)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (s *MongoStore) CountTasks(ctx context.Context, filter TaskFilter) (int, error) {
	n, err := s.tasks.CountDocuments(ctx, taskQuery(filter))
	return int(n), err
}

func (s *MongoStore) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	var doc taskDoc
	err := s.tasks.FindOne(ctx, bson.M{"_id": id.String(), "owner_id": ownerID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.populate(ctx, doc, map[string]models.TaskOwner{})
}

func (s *MongoStore) UpdateTask(ctx context.Context, id, ownerID uuid.UUID, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	set := bson.M{"updated_at": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	var doc taskDoc
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String(), "owner_id": ownerID.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.populate(ctx, doc, map[string]models.TaskOwner{})
}

func (s *MongoStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// DropDatabase removes the backing database. Used by integration tests.
func (s *MongoStore) DropDatabase(ctx context.Context) error {
	return s.users.Database().Drop(ctx)
}

// populate resolves the owner of doc, caching lookups in owners
func (s *MongoStore) populate(ctx context.Context, doc taskDoc, owners map[string]models.TaskOwner) (*models.Task, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("decode task id %q: %w", doc.ID, err)
	}
	ownerID, err := uuid.Parse(doc.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("decode owner id %q: %w", doc.OwnerID, err)
	}

	owner, ok := owners[doc.OwnerID]
	if !ok {
		owner = models.TaskOwner{ID: ownerID}
		u, err := s.GetUserByID(ctx, ownerID)
		switch {
		case err == nil:
			owner.Name = u.Name
			owner.Email = u.Email
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
		owners[doc.OwnerID] = owner
	}

	return &models.Task{
		ID:          id,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      models.TaskStatus(doc.Status),
		OwnerID:     ownerID,
		Owner:       owner,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

func taskQuery(filter TaskFilter) bson.M {
	q := bson.M{"owner_id": filter.OwnerID.String()}
	if filter.Search != "" {
		q["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	return q
}
