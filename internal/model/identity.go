package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizIdentity 去重时从集合中读取的最小字段集
type QuizIdentity struct {
	ID       primitive.ObjectID `bson:"_id"`
	Type     Variant            `bson:"type"`
	Question string             `bson:"question"`
	Options  []Option           `bson:"options"`
}

// IdentityProjection 与 QuizIdentity 对应的投影
var IdentityProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "type", Value: 1},
	{Key: "question", Value: 1},
	{Key: "options.oid", Value: 1},
	{Key: "options.text", Value: 1},
}

// QuestionDoc 标注任务读取的字段
type QuestionDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Question      string             `bson:"question"`
	ExtractedYear *int               `bson:"extractedYear,omitempty"`
	Source        string             `bson:"source,omitempty"`
}

// FieldUpdate 针对单条记录的 $set 更新
type FieldUpdate struct {
	ID  primitive.ObjectID
	Set bson.M
}
