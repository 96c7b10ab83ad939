package storage

// The pure-Go driver registers itself as "sqlite". Select it with
// SQLiteConfig.Driver = "sqlite" on platforms where cgo is unavailable.
import _ "modernc.org/sqlite"
