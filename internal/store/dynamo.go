package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/metrics"
	"github.com/myflix/movie-api/internal/models"
)

const usernameIndex = "username-index"

// DynamoUserStore persists user records in a DynamoDB table keyed by
// user_id, with a username-index GSI for login lookups. Favorites are
// stored as a string set so add/remove are single atomic updates.
type DynamoUserStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

// NewDynamoUserStore creates a user store backed by DynamoDB.
func NewDynamoUserStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *DynamoUserStore {
	return &DynamoUserStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// HealthCheck verifies the users table is reachable. Used by the
// readiness probe.
func (s *DynamoUserStore) HealthCheck(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", s.tableName, err)
	}
	return nil
}

func (s *DynamoUserStore) Create(ctx context.Context, user *models.User) error {
	start := time.Now()

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	recordOp("users", "create", start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrConflict
		}
		return fmt.Errorf("put user: %w", err)
	}

	return nil
}

func (s *DynamoUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	start := time.Now()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       userKey(userID),
	})
	recordOp("users", "get", start, err)

	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, ErrNotFound
	}

	return unmarshalUser(result.Item)
}

func (s *DynamoUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	start := time.Now()

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(usernameIndex),
		KeyConditionExpression: aws.String("username = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
	})
	recordOp("users", "get_by_username", start, err)

	if err != nil {
		return nil, fmt.Errorf("query username index: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	return unmarshalUser(result.Items[0])
}

func (s *DynamoUserStore) List(ctx context.Context) ([]models.User, error) {
	start := time.Now()

	users := make([]models.User, 0)
	var lastKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			recordOp("users", "list", start, err)
			return nil, fmt.Errorf("scan users: %w", err)
		}

		var page []models.User
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			recordOp("users", "list", start, err)
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		users = append(users, page...)

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	for i := range users {
		if users[i].Favorites == nil {
			users[i].Favorites = []string{}
		}
	}

	recordOp("users", "list", start, nil)
	return users, nil
}

func (s *DynamoUserStore) Update(ctx context.Context, userID string, update UserUpdate) (*models.User, error) {
	start := time.Now()

	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	var sets []string

	set := func(attr string, value *string) {
		if value == nil {
			return
		}
		placeholder := "#" + attr
		names[placeholder] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: *value}
		sets = append(sets, fmt.Sprintf("%s = :%s", placeholder, attr))
	}

	set("name", update.Name)
	set("username", update.Username)
	set("password_hash", update.PasswordHash)
	set("email", update.Email)
	set("birthdate", update.Birthdate)

	updatedAt := time.Now().UTC().Format(time.RFC3339Nano)
	names["#updated_at"] = "updated_at"
	values[":updated_at"] = &types.AttributeValueMemberS{Value: updatedAt}
	sets = append(sets, "#updated_at = :updated_at")

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       userKey(userID),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ReturnValues:              types.ReturnValueAllNew,
	})
	recordOp("users", "update", start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return unmarshalUser(result.Attributes)
}

func (s *DynamoUserStore) Delete(ctx context.Context, userID string) (*models.User, error) {
	start := time.Now()

	result, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(s.tableName),
		Key:          userKey(userID),
		ReturnValues: types.ReturnValueAllOld,
	})
	recordOp("users", "delete", start, err)

	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if len(result.Attributes) == 0 {
		return nil, ErrNotFound
	}

	return unmarshalUser(result.Attributes)
}

func (s *DynamoUserStore) AddFavorite(ctx context.Context, userID, movieID string) (*models.User, error) {
	return s.mutateFavorites(ctx, "add", "ADD favorites :m", userID, movieID)
}

func (s *DynamoUserStore) RemoveFavorite(ctx context.Context, userID, movieID string) (*models.User, error) {
	return s.mutateFavorites(ctx, "remove", "DELETE favorites :m", userID, movieID)
}

// mutateFavorites issues a single atomic set update. ADD of a present
// member and DELETE of an absent member are no-ops on the engine side,
// which is what makes both operations idempotent.
func (s *DynamoUserStore) mutateFavorites(ctx context.Context, op, expr, userID, movieID string) (*models.User, error) {
	start := time.Now()

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.tableName),
		Key:              userKey(userID),
		UpdateExpression: aws.String(expr),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberSS{Value: []string{movieID}},
		},
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ReturnValues:        types.ReturnValueAllNew,
	})
	recordOp("users", "favorites_"+op, start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s favorite: %w", op, err)
	}

	return unmarshalUser(result.Attributes)
}

// DynamoMovieStore reads the catalog from a DynamoDB table keyed by
// movie_id. Genre and director lookups filter on the embedded value
// objects; the catalog is small enough that a scan is acceptable.
type DynamoMovieStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

// NewDynamoMovieStore creates a movie store backed by DynamoDB.
func NewDynamoMovieStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *DynamoMovieStore {
	return &DynamoMovieStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (s *DynamoMovieStore) List(ctx context.Context) ([]models.Movie, error) {
	start := time.Now()

	movies := make([]models.Movie, 0)
	var lastKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			recordOp("movies", "list", start, err)
			return nil, fmt.Errorf("scan movies: %w", err)
		}

		var page []models.Movie
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			recordOp("movies", "list", start, err)
			return nil, fmt.Errorf("unmarshal movies: %w", err)
		}
		movies = append(movies, page...)

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	recordOp("movies", "list", start, nil)
	return movies, nil
}

func (s *DynamoMovieStore) GetByID(ctx context.Context, movieID string) (*models.Movie, error) {
	start := time.Now()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"movie_id": &types.AttributeValueMemberS{Value: movieID},
		},
	})
	recordOp("movies", "get", start, err)

	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if len(result.Item) == 0 {
		return nil, ErrNotFound
	}

	var movie models.Movie
	if err := attributevalue.UnmarshalMap(result.Item, &movie); err != nil {
		return nil, fmt.Errorf("unmarshal movie: %w", err)
	}

	return &movie, nil
}

func (s *DynamoMovieStore) GetGenreByName(ctx context.Context, name string) (*models.Genre, error) {
	movie, err := s.findByEmbeddedName(ctx, "genre", name)
	if err != nil {
		return nil, err
	}
	return &movie.Genre, nil
}

func (s *DynamoMovieStore) GetDirectorByName(ctx context.Context, name string) (*models.Director, error) {
	movie, err := s.findByEmbeddedName(ctx, "director", name)
	if err != nil {
		return nil, err
	}
	return &movie.Director, nil
}

func (s *DynamoMovieStore) findByEmbeddedName(ctx context.Context, attribute, name string) (*models.Movie, error) {
	start := time.Now()

	var lastKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.tableName),
			FilterExpression: aws.String(fmt.Sprintf("%s.#n = :name", attribute)),
			ExpressionAttributeNames: map[string]string{
				"#n": "name",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":name": &types.AttributeValueMemberS{Value: name},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			recordOp("movies", "find_by_"+attribute, start, err)
			return nil, fmt.Errorf("scan movies by %s: %w", attribute, err)
		}

		if len(result.Items) > 0 {
			var movie models.Movie
			if err := attributevalue.UnmarshalMap(result.Items[0], &movie); err != nil {
				return nil, fmt.Errorf("unmarshal movie: %w", err)
			}
			recordOp("movies", "find_by_"+attribute, start, nil)
			return &movie, nil
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	recordOp("movies", "find_by_"+attribute, start, nil)
	return nil, ErrNotFound
}

// Helpers

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
	}
}

func unmarshalUser(item map[string]types.AttributeValue) (*models.User, error) {
	var user models.User
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return &user, nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func recordOp(store, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordStoreOperation(store, operation, status, time.Since(start))
}
