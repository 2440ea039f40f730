package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ListingMUS serializes listings for storage. The serializer is written by
// hand rather than generated; the format is versionless, so any field
// change here requires a full re-seed of the database.
var ListingMUS = listingMUS{}

type listingMUS struct{}

func (listingMUS) Marshal(l Listing, bs []byte) (n int) {
	n += ord.String.Marshal(l.Id, bs[n:])
	n += ord.String.Marshal(l.Title, bs[n:])
	n += ord.String.Marshal(l.Description, bs[n:])
	n += ord.String.Marshal(l.Category, bs[n:])
	n += ord.String.Marshal(l.University, bs[n:])
	n += ord.String.Marshal(l.Price, bs[n:])
	n += varint.Int.Marshal(len(l.Images), bs[n:])
	for _, img := range l.Images {
		n += ord.String.Marshal(img, bs[n:])
	}
	n += marshalTime(l.PostedDate, bs[n:])
	n += varint.Int.Marshal(len(l.Embedding), bs[n:])
	for _, v := range l.Embedding {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	n += varint.Uint64.Marshal(l.ContentHash, bs[n:])
	n += marshalTime(l.InsertedAt, bs[n:])
	n += marshalTime(l.UpdatedAt, bs[n:])
	return n
}

func (listingMUS) Unmarshal(bs []byte) (l Listing, n int, err error) {
	var n1 int
	if l.Id, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.University, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.Price, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1

	var count int
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if count > 0 {
		l.Images = make([]string, count)
		for i := range l.Images {
			if l.Images[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return l, n + n1, err
			}
			n += n1
		}
	}

	if l.PostedDate, n1, err = unmarshalTime(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1

	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if count > 0 {
		l.Embedding = make([]float32, count)
		for i := range l.Embedding {
			if l.Embedding[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
				return l, n + n1, err
			}
			n += n1
		}
	}

	if l.ContentHash, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1
	if l.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return l, n + n1, err
	}
	n += n1

	return l, n, nil
}

func (listingMUS) Size(l Listing) (size int) {
	size += ord.String.Size(l.Id)
	size += ord.String.Size(l.Title)
	size += ord.String.Size(l.Description)
	size += ord.String.Size(l.Category)
	size += ord.String.Size(l.University)
	size += ord.String.Size(l.Price)
	size += varint.Int.Size(len(l.Images))
	for _, img := range l.Images {
		size += ord.String.Size(img)
	}
	size += timeSize(l.PostedDate)
	size += varint.Int.Size(len(l.Embedding))
	for _, v := range l.Embedding {
		size += raw.Float32.Size(v)
	}
	size += varint.Uint64.Size(l.ContentHash)
	size += timeSize(l.InsertedAt)
	size += timeSize(l.UpdatedAt)
	return size
}

// Timestamps are stored as a presence flag plus Unix microseconds; the zero
// time has no meaningful UnixMicro value.

func marshalTime(t time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(!t.IsZero(), bs)
	if !t.IsZero() {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return time.Time{}, n, err
	}
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return time.Time{}, n + n1, err
	}
	return time.UnixMicro(micros).UTC(), n + n1, nil
}

func timeSize(t time.Time) int {
	size := ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}
