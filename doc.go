// Package csvreader maps the rows of CSV files to caller-defined records.
//
// A record type is described by a table of mapping.Member values, each
// naming a field or setter, its conversion target and the column it reads
// by index or by header title. ReadObjects resolves the table against the
// header row once and then yields one freshly built record per row.
//
// # Features
//
//   - Configurable delimiter, enclosure and escape character
//   - Columns addressed by index or by header title
//   - Typed conversion of cells (int, float, string, bool, date/time, nullable variants)
//   - Locale aware number parsing with conversion.LocaleConverter
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Excel (XLSX) and Parquet files and SQL query results as alternative sources
//
// # Basic Usage
//
//	type Widget struct {
//	    ID    int      `csv:"title=id"`
//	    Name  string   `csv:"title=name"`
//	    Price *float64 `csv:"index=3"`
//	}
//
//	members := mapping.MustMembers[Widget]()
//
//	r := csvreader.Open("widgets.csv")
//	for w, err := range csvreader.ReadObjects(ctx, r, members) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(w.ID, w.Name)
//	}
//
// # Handles
//
// NewReader reads from an io.ReadSeeker. The position of the handle is
// recorded before a pass and restored afterwards, also when the caller
// stops iterating early, so the same handle can be read again.
//
// # Errors
//
// The first failure ends a pass. Errors wrap the sentinel values of this
// package and of the conversion and mapping packages, so errors.Is can be
// used to tell e.g. a missing title (mapping.ErrColumnNotFound) from an
// unparsable date (conversion.ErrConversionFailed).
package csvreader
