package core

import (
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types persisted in the metadata
// store. The shapes are small and stable enough that generated code is
// not worth the extra tooling.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// ChunkMUS serializes Chunks.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.Id), bs)
	n += ord.String.Marshal(c.DocumentID, bs[n:])
	n += ord.String.Marshal(c.CaseID, bs[n:])
	n += ord.String.Marshal(string(c.Granularity), bs[n:])
	n += varint.Int.Marshal(c.Position, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += varint.Int.Marshal(c.TokenCount, bs[n:])
	n += ord.String.Marshal(c.StructuralLabel, bs[n:])
	n += varint.Int.Marshal(len(c.Citations), bs[n:])
	for _, cit := range c.Citations {
		n += ord.String.Marshal(cit, bs[n:])
	}
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var (
		m    int
		id   uint64
		gran string
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	c.Id = ID(id)
	if c.DocumentID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.CaseID, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if gran, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	c.Granularity = Granularity(gran)
	if c.Position, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.TokenCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if c.StructuralLabel, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	var count int
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + m, err
	}
	n += m
	if count > 0 {
		c.Citations = make([]string, count)
		for i := 0; i < count; i++ {
			if c.Citations[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return c, n + m, err
			}
			n += m
		}
	}
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.Id))
	size += ord.String.Size(c.DocumentID)
	size += ord.String.Size(c.CaseID)
	size += ord.String.Size(string(c.Granularity))
	size += varint.Int.Size(c.Position)
	size += ord.String.Size(c.Text)
	size += varint.Int.Size(c.TokenCount)
	size += ord.String.Size(c.StructuralLabel)
	size += varint.Int.Size(len(c.Citations))
	for _, cit := range c.Citations {
		size += ord.String.Size(cit)
	}
	return size
}

func (s chunkMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}

// VocabularyMUS serializes Vocabulary snapshots. Terms are written in
// sorted order so identical snapshots serialize to identical bytes.
var VocabularyMUS = vocabularyMUS{}

type vocabularyMUS struct{}

func (vocabularyMUS) Marshal(v Vocabulary, bs []byte) (n int) {
	terms := make([]string, 0, len(v.Terms))
	for term := range v.Terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n = varint.Int.Marshal(len(terms), bs)
	for _, term := range terms {
		n += ord.String.Marshal(term, bs[n:])
		n += varint.Uint32.Marshal(v.Terms[term], bs[n:])
	}
	n += varint.Int.Marshal(len(v.DocFreq), bs[n:])
	for _, df := range v.DocFreq {
		n += varint.Uint32.Marshal(df, bs[n:])
	}
	n += varint.Int.Marshal(v.DocCount, bs[n:])
	n += varint.Float64.Marshal(v.AvgDocLen, bs[n:])
	return n
}

func (vocabularyMUS) Unmarshal(bs []byte) (v Vocabulary, n int, err error) {
	var (
		m     int
		count int
	)
	if count, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	v.Terms = make(map[string]uint32, count)
	for i := 0; i < count; i++ {
		var (
			term string
			id   uint32
		)
		if term, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		if id, m, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
		v.Terms[term] = id
	}
	if count, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	v.DocFreq = make([]uint32, count)
	for i := 0; i < count; i++ {
		if v.DocFreq[i], m, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return v, n + m, err
		}
		n += m
	}
	if v.DocCount, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.AvgDocLen, m, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	return v, n, nil
}

func (vocabularyMUS) Size(v Vocabulary) (size int) {
	size = varint.Int.Size(len(v.Terms))
	for term, id := range v.Terms {
		size += ord.String.Size(term)
		size += varint.Uint32.Size(id)
	}
	size += varint.Int.Size(len(v.DocFreq))
	for _, df := range v.DocFreq {
		size += varint.Uint32.Size(df)
	}
	size += varint.Int.Size(v.DocCount)
	size += varint.Float64.Size(v.AvgDocLen)
	return size
}

func (s vocabularyMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return n, err
}
