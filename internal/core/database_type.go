package core

// ─── Database Types ────────────────────────────────────────────────────────────

// DatabaseType defines the type of database
type DatabaseType string

const (
	Mongo DatabaseType = "mongo"
)

type MongoDatabaseName string
type MongoCollection string
type FluentdSubTag string

// ─── MongoDB ───────────────────────────────────────────────────────────────────
const (
	// URI 與設定都沒有指定 database 時使用
	MongoDBAcademy MongoDatabaseName = "academy"
)

// MongoDB collections（文件結構由其他服務維護，這裡只負責索引）
const (
	MongoCollectionUsers    MongoCollection = "users"
	MongoCollectionCourses  MongoCollection = "courses"
	MongoCollectionPayments MongoCollection = "payments"
	MongoCollectionClasses  MongoCollection = "classes"
	MongoCollectionNotices  MongoCollection = "notices"
)

const (
	FluentdConnectionEvent FluentdSubTag = "mongo.connection_event"
	FluentdIndexReport     FluentdSubTag = "mongo.index_report"
)
