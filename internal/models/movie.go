package models

// Movie is a catalog document with the director, genre, and cast
// embedded. The catalog is read-only from the API surface; documents
// are seeded out of band.
type Movie struct {
	MovieID     string   `json:"id" dynamodbav:"movie_id"` // Primary Key
	Title       string   `json:"title" dynamodbav:"title"`
	Description string   `json:"description" dynamodbav:"description"`
	ReleaseYear string   `json:"release_year" dynamodbav:"release_year"`
	Director    Director `json:"director" dynamodbav:"director"`
	Genre       Genre    `json:"genre" dynamodbav:"genre"`
	Actors      []Actor  `json:"actors" dynamodbav:"actors"`
}

// Director is a value object embedded in Movie.
type Director struct {
	Name      string `json:"name" dynamodbav:"name"`
	Bio       string `json:"bio" dynamodbav:"bio"`
	BirthYear string `json:"birth_year" dynamodbav:"birth_year"`
}

// Genre is a value object embedded in Movie.
type Genre struct {
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

// Actor carries back-references to the movies the actor appears in.
type Actor struct {
	ActorID   string     `json:"id" dynamodbav:"actor_id"`
	Name      string     `json:"name" dynamodbav:"name"`
	BirthYear string     `json:"birth_year" dynamodbav:"birth_year"`
	Movies    []MovieRef `json:"movies" dynamodbav:"movies"`
}

// MovieRef is a lightweight movie back-reference used inside Actor.
type MovieRef struct {
	MovieID string `json:"id" dynamodbav:"movie_id"`
	Title   string `json:"title" dynamodbav:"title"`
}
