package models

// Record is the canonical book entry shared by every source.
// Optional string fields use "" for unset and PageCount uses 0.
type Record struct {
	Title           string   `json:"title" parquet:"title"`
	TitleEn         string   `json:"title_en" parquet:"title_en"`
	TitleRomanized  string   `json:"title_romanized" parquet:"title_romanized"`
	Author          string   `json:"author" parquet:"author"`
	AuthorRomanized string   `json:"author_romanized" parquet:"author_romanized"`
	Description     string   `json:"description" parquet:"description"`
	PublishedAt     string   `json:"published_at" parquet:"published_at"` // opaque, not validated
	Language        string   `json:"language" parquet:"language"`
	PageCount       int      `json:"page_count" parquet:"page_count"`
	CoverImage      string   `json:"cover_image" parquet:"cover_image"`
	Publisher       string   `json:"publisher" parquet:"publisher"`
	ISBN            string   `json:"isbn" parquet:"isbn"`
	Source          string   `json:"source" parquet:"source"`
	URL             string   `json:"url" parquet:"url"`
	Category        []string `json:"category" parquet:"category,list"`
}

// DefaultLanguage is the language code of the corpus.
const DefaultLanguage = "am"

// Columns is the fixed header of the flat output.
var Columns = []string{
	"title",
	"title_en",
	"title_romanized",
	"author",
	"author_romanized",
	"description",
	"published_at",
	"language",
	"page_count",
	"cover_image",
	"publisher",
	"isbn",
	"source",
	"url",
	"category",
}

// NeedsEnrichment reports whether the record is missing any of isbn,
// page_count or publisher.
func (r *Record) NeedsEnrichment() bool {
	return r.ISBN == "" || r.PageCount == 0 || r.Publisher == ""
}

// EnrichmentSatisfied reports whether isbn, page_count and description are
// all populated, in which case no lookup is needed.
func (r *Record) EnrichmentSatisfied() bool {
	return r.ISBN != "" && r.PageCount > 0 && r.Description != ""
}

// FilledFields counts the populated optional metadata fields.
func (r *Record) FilledFields() int {
	n := 0
	for _, v := range []string{r.ISBN, r.Publisher, r.PublishedAt, r.Description, r.CoverImage} {
		if v != "" {
			n++
		}
	}
	if r.PageCount > 0 {
		n++
	}
	if len(r.Category) > 0 {
		n++
	}
	return n
}
