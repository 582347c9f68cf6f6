package repositories

// SQLite keeps the body as TEXT and reports duplicates through the
// ON CONFLICT clause instead of a driver error code.
var sqliteDialect = sqlDialect{
	insert: `INSERT INTO documents (kind, id, version, body) VALUES (?, ?, 1, ?) ON CONFLICT (kind, id) DO NOTHING`,
	get:    `SELECT body, version FROM documents WHERE kind = ? AND id = ?`,
	update: `
		UPDATE documents
		SET body = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE kind = ? AND id = ? AND version = ?
		RETURNING version`,
	exists: `SELECT EXISTS (SELECT 1 FROM documents WHERE kind = ? AND id = ?)`,
	mapErr: func(err error) error { return err },
}

func NewSQLiteDocumentStore(db SQLExecutor) DocumentStore {
	return &sqlDocumentStore{db: db, dialect: sqliteDialect}
}
