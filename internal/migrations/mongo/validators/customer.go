package validators

import "go.mongodb.org/mongo-driver/bson"

// CustomerValidator holds phones in normalized local form: digits only.
var CustomerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"tenant_id", "phone", "name"},
		"additionalProperties": true,

		"properties": bson.M{
			"tenant_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"phone": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{10,11}$",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 120,
			},

			"email": bson.M{
				"bsonType": "string",
			},
		},
	},
}
