package models

// Kind is the catalog category of a title
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
	KindAnime  Kind = "anime"
	KindGame   Kind = "game"
	KindOther  Kind = "other"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindSeries, KindAnime, KindGame, KindOther:
		return true
	}
	return false
}

// Episodic reports whether titles of this kind track season/episode progress
func (k Kind) Episodic() bool {
	return k == KindSeries || k == KindAnime
}

// Bucket is the list a title sits in for one owner
type Bucket string

const (
	BucketPlanned    Bucket = "planned"     // To watch
	BucketInRotation Bucket = "in_rotation" // Watching this week
	BucketFinished   Bucket = "finished"    // Watched
	BucketAbandoned  Bucket = "abandoned"   // Dropped
)

// Valid reports whether b is a known bucket
func (b Bucket) Valid() bool {
	switch b {
	case BucketPlanned, BucketInRotation, BucketFinished, BucketAbandoned:
		return true
	}
	return false
}
