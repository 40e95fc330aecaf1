package database

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"shopstack/internal/database/models"
)

const DefaultPageSize = 10

var identPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

type condition struct {
	query string
	args  []interface{}
}

// Query accumulates filter conditions for repository reads. Reads exclude
// soft-deleted records by default; constraining the status field in any way
// disables that default.
type Query struct {
	conds     []condition
	hasStatus bool
	sort      string
	fields    []string
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) Eq(field string, value interface{}) *Query {
	if field == "status" {
		q.hasStatus = true
	}
	q.conds = append(q.conds, condition{field + " = ?", []interface{}{value}})
	return q
}

func (q *Query) In(field string, values interface{}) *Query {
	if field == "status" {
		q.hasStatus = true
	}
	q.conds = append(q.conds, condition{field + " IN ?", []interface{}{values}})
	return q
}

func (q *Query) Between(field string, low, high interface{}) *Query {
	q.conds = append(q.conds, condition{field + " >= ? AND " + field + " <= ?", []interface{}{low, high}})
	return q
}

func (q *Query) Gte(field string, value interface{}) *Query {
	q.conds = append(q.conds, condition{field + " >= ?", []interface{}{value}})
	return q
}

func (q *Query) Lte(field string, value interface{}) *Query {
	q.conds = append(q.conds, condition{field + " <= ?", []interface{}{value}})
	return q
}

// Search matches term case-insensitively against any of the given fields.
func (q *Query) Search(term string, fields ...string) *Query {
	if term == "" || len(fields) == 0 {
		return q
	}
	parts := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, "LOWER("+f+") LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	q.conds = append(q.conds, condition{"(" + strings.Join(parts, " OR ") + ")", args})
	return q
}

// Sort accepts a field name, optionally prefixed with "-" for descending
// order. Unknown input falls back to newest-first.
func (q *Query) Sort(sort string) *Query {
	q.sort = sort
	return q
}

func (q *Query) Select(fields ...string) *Query {
	q.fields = fields
	return q
}

func (q *Query) order() string {
	sort := q.sort
	desc := false
	if strings.HasPrefix(sort, "-") {
		desc = true
		sort = sort[1:]
	}
	if sort == "" || !identPattern.MatchString(sort) {
		return "created_at DESC"
	}
	if desc {
		return sort + " DESC"
	}
	return sort + " ASC"
}

func (q *Query) apply(db *gorm.DB, softDelete bool) *gorm.DB {
	for _, c := range q.conds {
		db = db.Where(c.query, c.args...)
	}
	if softDelete && !q.hasStatus {
		db = db.Where("status <> ?", models.ItemStatusDeleted)
	}
	if len(q.fields) > 0 {
		db = db.Select(q.fields)
	}
	return db
}

// Page is the pagination envelope returned to clients.
type Page[T any] struct {
	Data         []T   `json:"data"`
	ItemsCount   int64 `json:"items_count"`
	ItemsPerPage int   `json:"items_per_page"`
	CurrentPage  int   `json:"current_page"`
	PageCount    int   `json:"page_count"`
	NextPage     *int  `json:"next_page"`
	PreviousPage *int  `json:"previous_page"`
}

// Repository is the uniform data access surface over one soft-deletable
// collection. Every mutating method takes an optional transaction handle;
// nil runs against the base connection.
type Repository[T any] struct {
	db       *gorm.DB
	populate []string
}

func NewRepository[T any](db *gorm.DB, populate ...string) *Repository[T] {
	return &Repository[T]{db: db, populate: populate}
}

func (r *Repository[T]) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Repository[T]) preload(db *gorm.DB, populate []string) *gorm.DB {
	if len(populate) == 0 {
		populate = r.populate
	}
	for _, p := range populate {
		db = db.Preload(p)
	}
	return db
}

func (r *Repository[T]) Save(record *T, tx *gorm.DB) (*T, error) {
	if err := r.conn(tx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository[T]) SaveMany(records []T, tx *gorm.DB) error {
	if len(records) == 0 {
		return nil
	}
	return r.conn(tx).Create(&records).Error
}

// UpdateOrCreateNew updates the first non-deleted match with the record's
// values, inserting a new record when nothing matches.
func (r *Repository[T]) UpdateOrCreateNew(q *Query, record *T, tx *gorm.DB) (*T, error) {
	var out T
	db := q.apply(r.conn(tx).Model(new(T)), true)
	if err := db.Assign(record).FirstOrCreate(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository[T]) Count(q *Query, tx *gorm.DB) (int64, error) {
	var count int64
	err := q.apply(r.conn(tx).Model(new(T)), true).Count(&count).Error
	return count, err
}

func (r *Repository[T]) Find(q *Query, limit int, tx *gorm.DB) ([]T, error) {
	var records []T
	db := q.apply(r.conn(tx).Model(new(T)), true).Order(q.order())
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&records).Error
	return records, err
}

func (r *Repository[T]) FindAndPopulate(q *Query, limit int, tx *gorm.DB, populate ...string) ([]T, error) {
	var records []T
	db := r.preload(q.apply(r.conn(tx).Model(new(T)), true), populate).Order(q.order())
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&records).Error
	return records, err
}

func (r *Repository[T]) FindOne(q *Query, tx *gorm.DB) (*T, error) {
	var record T
	err := q.apply(r.conn(tx).Model(new(T)), true).Order(q.order()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository[T]) FindOneAndPopulate(q *Query, tx *gorm.DB, populate ...string) (*T, error) {
	var record T
	db := r.preload(q.apply(r.conn(tx).Model(new(T)), true), populate)
	err := db.Order(q.order()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByID looks a record up by primary id. Id lookups are authoritative
// and skip the soft-delete filter.
func (r *Repository[T]) FindByID(id string, tx *gorm.DB) (*T, error) {
	var record T
	err := r.conn(tx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository[T]) FindByIDAndPopulate(id string, tx *gorm.DB, populate ...string) (*T, error) {
	var record T
	db := r.preload(r.conn(tx), populate)
	err := db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository[T]) paginate(q *Query, pageSize, pageNumber int, tx *gorm.DB, populate []string, withPopulate bool) (*Page[T], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	count, err := r.Count(q, tx)
	if err != nil {
		return nil, err
	}

	var records []T
	db := q.apply(r.conn(tx).Model(new(T)), true)
	if withPopulate {
		db = r.preload(db, populate)
	}
	err = db.Order(q.order()).Limit(pageSize).Offset((pageNumber - 1) * pageSize).Find(&records).Error
	if err != nil {
		return nil, err
	}

	pageCount := int((count + int64(pageSize) - 1) / int64(pageSize))
	page := &Page[T]{
		Data:         records,
		ItemsCount:   count,
		ItemsPerPage: pageSize,
		CurrentPage:  pageNumber,
		PageCount:    pageCount,
	}
	if pageNumber < pageCount {
		next := pageNumber + 1
		page.NextPage = &next
	}
	if pageNumber > 1 {
		prev := pageNumber - 1
		page.PreviousPage = &prev
	}
	return page, nil
}

func (r *Repository[T]) Paginate(q *Query, pageSize, pageNumber int, tx *gorm.DB) (*Page[T], error) {
	return r.paginate(q, pageSize, pageNumber, tx, nil, false)
}

func (r *Repository[T]) PaginateAndPopulate(q *Query, pageSize, pageNumber int, tx *gorm.DB, populate ...string) (*Page[T], error) {
	return r.paginate(q, pageSize, pageNumber, tx, populate, true)
}

// UpdateByID applies a partial update and returns the updated record, or
// nil when no record matches.
func (r *Repository[T]) UpdateByID(id string, data map[string]interface{}, tx *gorm.DB) (*T, error) {
	res := r.conn(tx).Model(new(T)).Where("id = ?", id).Updates(data)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(id, tx)
}

func (r *Repository[T]) UpdateOne(q *Query, data map[string]interface{}, tx *gorm.DB) (*T, error) {
	record, err := r.FindOne(q, tx)
	if err != nil || record == nil {
		return nil, err
	}
	return r.UpdateByID(r.primaryKey(record), data, tx)
}

func (r *Repository[T]) UpdateMany(q *Query, data map[string]interface{}, tx *gorm.DB) (int64, error) {
	res := q.apply(r.conn(tx).Model(new(T)), true).Updates(data)
	return res.RowsAffected, res.Error
}

// DeleteOne hard-deletes the first match. Reserved for disposable records;
// business entities use soft status transitions instead.
func (r *Repository[T]) DeleteOne(q *Query, tx *gorm.DB) error {
	record, err := r.FindOne(q, tx)
	if err != nil || record == nil {
		return err
	}
	return r.conn(tx).Delete(new(T), "id = ?", r.primaryKey(record)).Error
}

func (r *Repository[T]) DeleteMany(q *Query, tx *gorm.DB) (int64, error) {
	db := q.apply(r.conn(tx), false)
	res := db.Delete(new(T))
	return res.RowsAffected, res.Error
}

// primaryKey reads the promoted Record.ID field off a model value.
func (r *Repository[T]) primaryKey(record *T) string {
	f := reflect.ValueOf(record).Elem().FieldByName("ID")
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}
