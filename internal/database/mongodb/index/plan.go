package index

import (
	"fmt"
	"strings"

	"academy/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Spec 描述一個要建立的索引：collection + 有序欄位 + 是否唯一
type Spec struct {
	Collection core.MongoCollection
	Keys       bson.D
	Unique     bool
}

// Name 回傳與 driver 預設規則相同的索引名稱（email_1、status_1_publishDate_-1）
func (s Spec) Name() string {
	parts := make([]string, 0, len(s.Keys)*2)
	for _, e := range s.Keys {
		parts = append(parts, e.Key, fmt.Sprint(e.Value))
	}
	return strings.Join(parts, "_")
}

// Fields 回傳欄位名稱，供 log 使用
func (s Spec) Fields() string {
	fields := make([]string, 0, len(s.Keys))
	for _, e := range s.Keys {
		fields = append(fields, e.Key)
	}
	return strings.Join(fields, ",")
}

// Model 轉成 driver 的 IndexModel；不指定名稱，重跑時與既有索引視為同一個
func (s Spec) Model() mongo.IndexModel {
	model := mongo.IndexModel{Keys: s.Keys}
	if s.Unique {
		model.Options = options.Index().SetUnique(true)
	}
	return model
}

func asc(field string) bson.E  { return bson.E{Key: field, Value: 1} }
func desc(field string) bson.E { return bson.E{Key: field, Value: -1} }

// Plan 回傳固定的索引清單（順序即建立順序）。每次呼叫都是新的 slice。
func Plan() []Spec {
	return []Spec{
		// users
		{Collection: core.MongoCollectionUsers, Keys: bson.D{asc("email")}, Unique: true},
		{Collection: core.MongoCollectionUsers, Keys: bson.D{asc("enrollmentId")}, Unique: true},
		{Collection: core.MongoCollectionUsers, Keys: bson.D{asc("role")}},
		{Collection: core.MongoCollectionUsers, Keys: bson.D{asc("status")}},
		{Collection: core.MongoCollectionUsers, Keys: bson.D{asc("course")}},

		// courses
		{Collection: core.MongoCollectionCourses, Keys: bson.D{asc("name")}},
		{Collection: core.MongoCollectionCourses, Keys: bson.D{asc("category"), asc("status")}},
		{Collection: core.MongoCollectionCourses, Keys: bson.D{asc("status")}},
		{Collection: core.MongoCollectionCourses, Keys: bson.D{asc("instructorId")}},

		// payments
		{Collection: core.MongoCollectionPayments, Keys: bson.D{asc("paymentId")}, Unique: true},
		{Collection: core.MongoCollectionPayments, Keys: bson.D{asc("studentId"), asc("status")}},
		{Collection: core.MongoCollectionPayments, Keys: bson.D{asc("orderId")}},
		{Collection: core.MongoCollectionPayments, Keys: bson.D{desc("createdAt")}},
		{Collection: core.MongoCollectionPayments, Keys: bson.D{asc("month")}},

		// classes
		{Collection: core.MongoCollectionClasses, Keys: bson.D{asc("startTime"), asc("status")}},
		{Collection: core.MongoCollectionClasses, Keys: bson.D{asc("courseId"), asc("startTime")}},
		{Collection: core.MongoCollectionClasses, Keys: bson.D{asc("instructorId")}},
		{Collection: core.MongoCollectionClasses, Keys: bson.D{asc("status")}},

		// notices
		{Collection: core.MongoCollectionNotices, Keys: bson.D{asc("status"), desc("publishDate")}},
		{Collection: core.MongoCollectionNotices, Keys: bson.D{asc("category"), asc("priority")}},
		{Collection: core.MongoCollectionNotices, Keys: bson.D{asc("target")}},
		{Collection: core.MongoCollectionNotices, Keys: bson.D{asc("publishedBy")}},
	}
}
