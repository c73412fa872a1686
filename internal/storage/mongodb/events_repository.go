package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
)

// geoPoint is a GeoJSON Point; coordinates are [lng, lat] in the order
// MongoDB's 2dsphere index expects.
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

func newGeoPoint(c events.Coordinates) geoPoint {
	return geoPoint{Type: "Point", Coordinates: []float64{c.Lng, c.Lat}}
}

func (p geoPoint) toCoordinates() events.Coordinates {
	if len(p.Coordinates) != 2 {
		return events.Coordinates{}
	}
	return events.Coordinates{Lng: p.Coordinates[0], Lat: p.Coordinates[1]}
}

type eventDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Title          string               `bson:"title"`
	Description    string               `bson:"description,omitempty"`
	Category       string               `bson:"category,omitempty"`
	Date           time.Time            `bson:"date"`
	Time           string               `bson:"time,omitempty"`
	Venue          string               `bson:"venue"`
	Address        string               `bson:"address,omitempty"`
	Location       geoPoint             `bson:"location"`
	MaxAttendees   int                  `bson:"max_attendees"`
	ParticipantIDs []primitive.ObjectID `bson:"participant_ids"`
	Image          string               `bson:"image,omitempty"`
	OrganizerID    primitive.ObjectID   `bson:"organizer_id"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

func (d eventDoc) toDomain() events.Event {
	participants := make([]string, 0, len(d.ParticipantIDs))
	for _, id := range d.ParticipantIDs {
		participants = append(participants, id.Hex())
	}
	return events.Event{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		Description:    d.Description,
		Category:       d.Category,
		Date:           d.Date,
		Time:           d.Time,
		Venue:          d.Venue,
		Address:        d.Address,
		Location:       d.Location.toCoordinates(),
		MaxAttendees:   d.MaxAttendees,
		ParticipantIDs: participants,
		Image:          d.Image,
		OrganizerID:    d.OrganizerID.Hex(),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type EventsRepository struct {
	c *mongo.Collection
}

func NewEventsRepository(db *mongo.Database) *EventsRepository {
	return &EventsRepository{c: db.Collection("events")}
}

func (r *EventsRepository) Insert(ctx context.Context, event events.Event) (events.Event, error) {
	organizerID, err := primitive.ObjectIDFromHex(event.OrganizerID)
	if err != nil {
		return events.Event{}, fmt.Errorf("invalid organizer id %q", event.OrganizerID)
	}

	now := time.Now().UTC()
	doc := eventDoc{
		ID:             primitive.NewObjectID(),
		Title:          event.Title,
		Description:    event.Description,
		Category:       event.Category,
		Date:           event.Date,
		Time:           event.Time,
		Venue:          event.Venue,
		Address:        event.Address,
		Location:       newGeoPoint(event.Location),
		MaxAttendees:   event.MaxAttendees,
		ParticipantIDs: []primitive.ObjectID{},
		Image:          event.Image,
		OrganizerID:    organizerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *EventsRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, events.ErrNotFound
	}
	var doc eventDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventsRepository) Update(ctx context.Context, id string, update events.UpdateParams) (*events.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, events.ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Date != nil {
		set["date"] = *update.Date
	}
	if update.Time != nil {
		set["time"] = *update.Time
	}
	if update.Venue != nil {
		set["venue"] = *update.Venue
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.Location != nil {
		set["location"] = newGeoPoint(*update.Location)
	}
	if update.MaxAttendees != nil {
		set["max_attendees"] = *update.MaxAttendees
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}

	var doc eventDoc
	err = r.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	event := doc.toDomain()
	return &event, nil
}

func (r *EventsRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return events.ErrNotFound
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepository) List(ctx context.Context) ([]events.Event, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// Search composes case-insensitive substring matches on title and venue with
// an optional $near proximity filter; the 2dsphere index does the
// great-circle math.
func (r *EventsRepository) Search(ctx context.Context, query events.SearchQuery) ([]events.Event, error) {
	filter := bson.M{}
	if query.Title != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(query.Title), "$options": "i"}
	}
	if query.Venue != "" {
		filter["venue"] = bson.M{"$regex": regexp.QuoteMeta(query.Venue), "$options": "i"}
	}
	if query.Near != nil {
		filter["location"] = bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{query.Near.Lng, query.Near.Lat},
				},
				"$maxDistance": query.Near.RadiusKm * 1000, // km to meters
			},
		}
	}
	return r.find(ctx, filter, options.Find())
}

func (r *EventsRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]events.Event, error) {
	oid, err := primitive.ObjectIDFromHex(organizerID)
	if err != nil {
		return []events.Event{}, nil
	}
	return r.find(ctx, bson.M{"organizer_id": oid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *EventsRepository) ListByParticipant(ctx context.Context, userID string) ([]events.Event, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []events.Event{}, nil
	}
	return r.find(ctx, bson.M{"participant_ids": uid}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// AddParticipant is the membership check-and-append as one conditional
// update: the filter only matches when the user is absent and either no
// capacity bound is set or there is room, so MongoDB evaluates the
// predicates atomically with the $addToSet. When nothing matched, a follow-up
// read tells which predicate failed.
func (r *EventsRepository) AddParticipant(ctx context.Context, eventID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return events.ErrNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}

	filter := bson.M{
		"_id":             oid,
		"participant_ids": bson.M{"$ne": uid},
		"$expr": bson.M{"$or": bson.A{
			bson.M{"$lte": bson.A{"$max_attendees", 0}},
			bson.M{"$lt": bson.A{bson.M{"$size": "$participant_ids"}, "$max_attendees"}},
		}},
	}
	update := bson.M{
		"$addToSet": bson.M{"participant_ids": uid},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: find out why.
	var doc eventDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return events.ErrNotFound
		}
		return fmt.Errorf("inspect event: %w", err)
	}
	for _, id := range doc.ParticipantIDs {
		if id == uid {
			return events.ErrAlreadyJoined
		}
	}
	return events.ErrCapacityExceeded
}

// RemoveParticipant is the compensating action for a failed join.
func (r *EventsRepository) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return events.ErrNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}

	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{"participant_ids": uid},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if res.MatchedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]events.Event, error) {
	cursor, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]events.Event, 0)
	for cursor.Next(ctx) {
		var doc eventDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return items, nil
}

// EnsureIndexes creates the geospatial and lookup indexes the queries rely on.
func (r *EventsRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("idx_events_location"),
		},
		{
			Keys:    bson.D{{Key: "organizer_id", Value: 1}},
			Options: options.Index().SetName("idx_events_organizer"),
		},
		{
			Keys:    bson.D{{Key: "participant_ids", Value: 1}},
			Options: options.Index().SetName("idx_events_participants"),
		},
	}
	_, err := r.c.Indexes().CreateMany(ctx, indexes)
	return err
}
