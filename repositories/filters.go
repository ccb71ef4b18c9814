package repositories

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"civictrack-be/geo"
	"civictrack-be/models"
)

// issueFilter translates an IssueFilter into a Mongo query document.
func issueFilter(f models.IssueFilter) bson.M {
	var clauses []bson.M

	if f.Category != "" {
		clauses = append(clauses, bson.M{"category": f.Category})
	}
	if f.Status != "" {
		clauses = append(clauses, bson.M{"status": f.Status})
	}
	if !f.CreatedBy.IsZero() {
		clauses = append(clauses, bson.M{"createdBy": f.CreatedBy})
	}
	if f.ExcludeHidden {
		clauses = append(clauses, bson.M{"hidden": bson.M{"$ne": true}})
	}
	if len(f.ExcludeAuthors) > 0 {
		clauses = append(clauses, bson.M{"createdBy": bson.M{"$nin": f.ExcludeAuthors}})
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, bson.M{"createdAt": bson.M{"$gte": f.Since}})
	}
	if f.Box != nil {
		clauses = append(clauses, boxClauses(*f.Box)...)
	}
	if f.Search != "" {
		clauses = append(clauses, searchClause(f.Search, "title", "description"))
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

func boxClauses(box geo.Box) []bson.M {
	clauses := []bson.M{{
		"location.lat": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
	}}
	if box.AllLongitudes {
		return clauses
	}

	lng := make([]bson.M, 0, len(box.LngRanges))
	for _, r := range box.LngRanges {
		lng = append(lng, bson.M{"location.lng": bson.M{"$gte": r.Min, "$lte": r.Max}})
	}
	if len(lng) == 1 {
		return append(clauses, lng[0])
	}
	return append(clauses, bson.M{"$or": lng})
}

// searchClause matches term case-insensitively and literally in any field.
func searchClause(term string, fields ...string) bson.M {
	pattern := regexp.QuoteMeta(term)
	or := make([]bson.M, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	if len(or) == 1 {
		return or[0]
	}
	return bson.M{"$or": or}
}

func flagFilter(f models.FlagFilter) bson.M {
	if f.ReviewStatus == "" {
		return bson.M{}
	}
	return bson.M{"reviewStatus": f.ReviewStatus}
}
