package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
)

var bookSortColumns = map[string]string{
	"title":           "b.title",
	"isbn":            "b.isbn",
	"publicationYear": "b.publication_year",
	"createdAt":       "b.created_at",
}

func bookSelect() sq.SelectBuilder {
	return qb.Select(
		"b.id", "b.title", "b.isbn", "b.publication_year",
		"COALESCE(b.edition, '') AS edition",
		"COALESCE(b.summary, '') AS summary",
		"COALESCE(b.language, '') AS language",
		"b.page_count",
		"COALESCE(b.cover_image_url, '') AS cover_image_url",
		"b.is_available", "b.publisher_id",
		"COALESCE(p.name, '') AS publisher_name",
		"b.created_at", "b.updated_at",
		"(SELECT count(*) FROM borrow_records br WHERE br.book_id = b.id) AS total_borrows",
		"EXISTS (SELECT 1 FROM borrow_records br WHERE br.book_id = b.id AND br.return_date IS NULL) AS currently_borrowed",
	).
		From(booksTableName + " b").
		LeftJoin(publishersTableName + " p ON p.id = b.publisher_id")
}

func applyBookFilter(b sq.SelectBuilder, f model.BookFilter) sq.SelectBuilder {
	if f.Query != "" {
		like := "%" + f.Query + "%"
		b = b.Where(sq.Or{sq.ILike{"b.title": like}, sq.ILike{"b.isbn": like}})
	}
	if f.AvailableOnly {
		b = b.Where(sq.Eq{"b.is_available": true})
	}
	if f.CategoryID != nil {
		b = b.Where("EXISTS (SELECT 1 FROM book_categories bc WHERE bc.book_id = b.id AND bc.category_id = ?)", *f.CategoryID)
	}
	if f.AuthorID != nil {
		b = b.Where("EXISTS (SELECT 1 FROM book_authors ba WHERE ba.book_id = b.id AND ba.author_id = ?)", *f.AuthorID)
	}
	return b
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter, page model.PageRequest) ([]model.Book, int64, error) {
	total, err := r.count(ctx, applyBookFilter(qb.Select("count(*)").From(booksTableName+" b"), filter))
	if err != nil {
		return nil, 0, err
	}

	sortCol, ok := bookSortColumns[page.SortBy]
	if !ok {
		sortCol = bookSortColumns["title"]
	}
	q := applyBookFilter(bookSelect(), filter).
		OrderBy(sortCol+orderDir(page.Desc), "b.id").
		Limit(uint64(page.Size)).
		Offset(page.Offset())

	var books []model.Book
	if err := r.selectAll(ctx, &books, q); err != nil {
		return nil, 0, err
	}
	if err := r.loadBookRelations(ctx, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	var book model.Book
	if err := r.get(ctx, &book, bookSelect().Where(sq.Eq{"b.id": id})); err != nil {
		return model.Book{}, notFound(err, "Book", id)
	}
	books := []model.Book{book}
	if err := r.loadBookRelations(ctx, books); err != nil {
		return model.Book{}, err
	}
	return books[0], nil
}

func (r *repository) GetBookForUpdate(ctx context.Context, id int64) (model.Book, error) {
	q := qb.Select("id", "title", "isbn", "COALESCE(cover_image_url, '') AS cover_image_url",
		"is_available", "publisher_id", "created_at", "updated_at").
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")
	var book model.Book
	if err := r.get(ctx, &book, q); err != nil {
		return model.Book{}, notFound(err, "Book", id)
	}
	return book, nil
}

// loadBookRelations fills author and category names for all books with one query each.
func (r *repository) loadBookRelations(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(books))
	idx := make(map[int64]int, len(books))
	for i := range books {
		ids = append(ids, books[i].ID)
		idx[books[i].ID] = i
		books[i].AuthorIDs = []int64{}
		books[i].AuthorNames = []string{}
		books[i].CategoryIDs = []int64{}
		books[i].CategoryNames = []string{}
	}

	var authors []model.BookRelation
	err := r.selectAll(ctx, &authors, qb.Select("ba.book_id", "a.id", "a.first_name || ' ' || a.last_name AS name").
		From(bookAuthorsTableName+" ba").
		Join(authorsTableName+" a ON a.id = ba.author_id").
		Where(sq.Eq{"ba.book_id": ids}).
		OrderBy("a.last_name", "a.first_name"))
	if err != nil {
		return errors.Wrap(err, "load book authors")
	}
	for _, a := range authors {
		b := &books[idx[a.BookID]]
		b.AuthorIDs = append(b.AuthorIDs, a.ID)
		b.AuthorNames = append(b.AuthorNames, a.Name)
	}

	var categories []model.BookRelation
	err = r.selectAll(ctx, &categories, qb.Select("bc.book_id", "c.id", "c.name").
		From(bookCategoriesTableName+" bc").
		Join(categoriesTableName+" c ON c.id = bc.category_id").
		Where(sq.Eq{"bc.book_id": ids}).
		OrderBy("c.name"))
	if err != nil {
		return errors.Wrap(err, "load book categories")
	}
	for _, c := range categories {
		b := &books[idx[c.BookID]]
		b.CategoryIDs = append(b.CategoryIDs, c.ID)
		b.CategoryNames = append(b.CategoryNames, c.Name)
	}
	return nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (int64, error) {
	id, err := r.insert(ctx, qb.Insert(booksTableName).
		Columns("title", "isbn", "publication_year", "edition", "summary", "language",
			"page_count", "cover_image_url", "is_available", "publisher_id").
		Values(book.Title, book.ISBN, book.PublicationYear, nullIfEmpty(book.Edition), nullIfEmpty(book.Summary),
			nullIfEmpty(book.Language), book.PageCount, nullIfEmpty(book.CoverImageURL), book.IsAvailable, book.PublisherID))
	if err != nil {
		return 0, mapPgErr(err, "Book")
	}
	return id, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) error {
	n, err := r.exec(ctx, qb.Update(booksTableName).
		Set("title", book.Title).
		Set("isbn", book.ISBN).
		Set("publication_year", book.PublicationYear).
		Set("edition", nullIfEmpty(book.Edition)).
		Set("summary", nullIfEmpty(book.Summary)).
		Set("language", nullIfEmpty(book.Language)).
		Set("page_count", book.PageCount).
		Set("cover_image_url", nullIfEmpty(book.CoverImageURL)).
		Set("is_available", book.IsAvailable).
		Set("publisher_id", book.PublisherID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": book.ID}))
	return mustAffect(n, err, "Book", book.ID)
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	n, err := r.exec(ctx, qb.Delete(booksTableName).Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Book", id)
}

func (r *repository) ExistsByISBN(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	return r.exists(ctx, booksTableName, sq.Eq{"isbn": isbn}, excludeID)
}

// SetBookAvailable flips the flag only if it currently holds the opposite value and reports whether it did.
func (r *repository) SetBookAvailable(ctx context.Context, id int64, available bool) (bool, error) {
	n, err := r.exec(ctx, qb.Update(booksTableName).
		Set("is_available", available).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "is_available": !available}))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) SetBookAuthors(ctx context.Context, bookID int64, authorIDs []int64) error {
	return r.replaceLinks(ctx, bookAuthorsTableName, "author_id", bookID, authorIDs)
}

func (r *repository) SetBookCategories(ctx context.Context, bookID int64, categoryIDs []int64) error {
	return r.replaceLinks(ctx, bookCategoriesTableName, "category_id", bookID, categoryIDs)
}

func (r *repository) replaceLinks(ctx context.Context, table, column string, bookID int64, ids []int64) error {
	if _, err := r.exec(ctx, qb.Delete(table).Where(sq.Eq{"book_id": bookID})); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ins := qb.Insert(table).Columns("book_id", column)
	for _, id := range ids {
		ins = ins.Values(bookID, id)
	}
	_, err := r.exec(ctx, ins.Suffix("ON CONFLICT DO NOTHING"))
	return mapPgErr(err, table)
}

func (r *repository) SetBookCover(ctx context.Context, id int64, url string) error {
	n, err := r.exec(ctx, qb.Update(booksTableName).
		Set("cover_image_url", url).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}))
	return mustAffect(n, err, "Book", id)
}

func (r *repository) CountBooks(ctx context.Context, availableOnly bool) (int64, error) {
	q := qb.Select("count(*)").From(booksTableName)
	if availableOnly {
		q = q.Where(sq.Eq{"is_available": true})
	}
	return r.count(ctx, q)
}
