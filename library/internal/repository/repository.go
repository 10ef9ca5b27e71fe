package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type BookRepository interface {
	ListBooks(ctx context.Context, filter model.BookFilter, page model.PageRequest) ([]model.Book, int64, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	GetBookForUpdate(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (int64, error)
	UpdateBook(ctx context.Context, book model.Book) error
	DeleteBook(ctx context.Context, id int64) error
	ExistsByISBN(ctx context.Context, isbn string, excludeID int64) (bool, error)
	SetBookAvailable(ctx context.Context, id int64, available bool) (bool, error)
	SetBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) error
	SetBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) error
	SetBookCover(ctx context.Context, id int64, url string) error
	CountBooks(ctx context.Context, availableOnly bool) (int64, error)
}

type AuthorRepository interface {
	ListAuthors(ctx context.Context, page model.PageRequest) ([]model.Author, int64, error)
	SearchAuthors(ctx context.Context, query string) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int64) (model.Author, error)
	CreateAuthor(ctx context.Context, author model.Author) (int64, error)
	UpdateAuthor(ctx context.Context, author model.Author) error
	DeleteAuthor(ctx context.Context, id int64) error
	CountExistingAuthors(ctx context.Context, ids []int64) (int, error)
	CountAuthors(ctx context.Context) (int64, error)
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (model.Category, error)
	ListChildCategories(ctx context.Context, parentID int64) ([]model.Category, error)
	CategoryAncestors(ctx context.Context, id int64) ([]model.Category, error)
	CreateCategory(ctx context.Context, category model.Category) (int64, error)
	UpdateCategory(ctx context.Context, category model.Category) error
	UpdateSubtreeLevels(ctx context.Context, rootID int64) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountExistingCategories(ctx context.Context, ids []int64) (int, error)
	CountCategories(ctx context.Context) (int64, error)
}

type PublisherRepository interface {
	ListPublishers(ctx context.Context) ([]model.Publisher, error)
	SearchPublishers(ctx context.Context, name string) ([]model.Publisher, error)
	GetPublisher(ctx context.Context, id int64) (model.Publisher, error)
	CreatePublisher(ctx context.Context, publisher model.Publisher) (int64, error)
	UpdatePublisher(ctx context.Context, publisher model.Publisher) error
	DeletePublisher(ctx context.Context, id int64) error
	PublisherNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	CountPublishers(ctx context.Context) (int64, error)
}

type MemberRepository interface {
	ListMembers(ctx context.Context, page model.PageRequest) ([]model.Member, int64, error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	GetMemberForUpdate(ctx context.Context, id int64) (model.Member, error)
	CreateMember(ctx context.Context, member model.Member) (int64, error)
	UpdateMember(ctx context.Context, member model.Member) error
	DeleteMember(ctx context.Context, id int64) error
	MemberEmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	CountActiveMembers(ctx context.Context) (int64, error)
}

type UserRepository interface {
	ListUsers(ctx context.Context, role auth.Role) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) (int64, error)
	UpdateUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id int64) error
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	UserEmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type BorrowRepository interface {
	ListBorrows(ctx context.Context, filter model.BorrowFilter, page model.PageRequest) ([]model.BorrowRecord, int64, error)
	GetBorrow(ctx context.Context, id int64) (model.BorrowRecord, error)
	GetBorrowForUpdate(ctx context.Context, id int64) (model.BorrowRecord, error)
	CreateBorrow(ctx context.Context, record model.BorrowRecord) (int64, error)
	UpdateBorrow(ctx context.Context, record model.BorrowRecord) error
	CountOpenBorrowsByMember(ctx context.Context, memberID int64) (int, error)
	CountBorrowsByBook(ctx context.Context, bookID int64) (int64, error)
	CountBorrowsByMember(ctx context.Context, memberID int64) (int64, error)
	HasOpenBorrow(ctx context.Context, bookID int64) (bool, error)
	ListOverdueBorrows(ctx context.Context, today model.Date) ([]model.BorrowRecord, error)
	MarkOverdue(ctx context.Context, today model.Date) (int64, error)
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity model.UserActivity) error
	ListActivities(ctx context.Context, filter model.ActivityFilter, page model.PageRequest) ([]model.UserActivity, int64, error)
}

type Repository interface {
	BookRepository
	AuthorRepository
	CategoryRepository
	PublisherRepository
	MemberRepository
	UserRepository
	BorrowRepository
	ActivityRepository

	// InTx runs fn against a repository bound to one transaction. Nested calls join the outer one.
	InTx(ctx context.Context, fn func(repo Repository) error) error
}

type dbtx interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type repository struct {
	db  *sqlx.DB
	q   dbtx
	tx  *sqlx.Tx
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		q:   db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName          = `books`
	authorsTableName        = `authors`
	categoriesTableName     = `categories`
	publishersTableName     = `publishers`
	membersTableName        = `members`
	usersTableName          = `users`
	borrowRecordsTableName  = `borrow_records`
	bookAuthorsTableName    = `book_authors`
	bookCategoriesTableName = `book_categories`
	activitiesTableName     = `user_activities`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	txRepo := &repository{db: r.db, q: tx, tx: tx, log: r.log}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Error("tx rollback", zap.Error(rbErr))
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (r *repository) get(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	return r.q.GetContext(ctx, dest, query, args...)
}

func (r *repository) selectAll(ctx context.Context, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := r.q.SelectContext(ctx, dest, query, args...); err != nil {
		r.log.Error("select", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) exec(ctx context.Context, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) insert(ctx context.Context, b sq.InsertBuilder) (int64, error) {
	var id int64
	if err := r.get(ctx, &id, b.Suffix("RETURNING id")); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int64, error) {
	var n int64
	if err := r.get(ctx, &n, b); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repository) exists(ctx context.Context, table string, cond sq.Sqlizer, excludeID int64) (bool, error) {
	where := sq.And{cond}
	if excludeID != 0 {
		where = append(where, sq.NotEq{"id": excludeID})
	}
	inner, args, err := sq.Select("1").From(table).Where(where).ToSql()
	if err != nil {
		return false, err
	}
	var ok bool
	if err := r.get(ctx, &ok, qb.Select().Column(sq.Expr("EXISTS ("+inner+")", args...))); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *repository) countExisting(ctx context.Context, table string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.count(ctx, qb.Select("count(*)").From(table).Where(sq.Eq{"id": ids}))
	return int(n), err
}

// notFound converts sql.ErrNoRows into the entity's not-found error.
func notFound(err error, entity string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(entity, id)
	}
	return mapPgErr(err, entity)
}

func mapPgErr(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return errs.Conflict("%s already exists", entity)
	case pgerrcode.ForeignKeyViolation:
		return errs.Business("%s is referenced by other records", entity)
	case pgerrcode.CheckViolation:
		return errs.Validation("%s violates constraint %s", entity, pgErr.ConstraintName)
	}
	return err
}

func mustAffect(n int64, err error, entity string, id any) error {
	if err != nil {
		return mapPgErr(err, entity)
	}
	if n == 0 {
		return errs.NotFound(entity, id)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func orderDir(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}
