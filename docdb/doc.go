// Package docdb is the embeddable facade over the bucket-file storage
// engine: open a store backed by a data directory, then get, insert,
// update, remove and check existence of documents keyed by a signed
// 64-bit id.
//
// Example:
//
//	db, err := docdb.NewDiskDB(docdb.WithDataDir("./db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.Insert(1, []byte("payload"))
//	doc, err := db.Get(1)
package docdb
