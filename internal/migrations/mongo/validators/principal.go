package validators

import "go.mongodb.org/mongo-driver/bson"

// PrincipalValidator is shared by the Owners and Users collections.
var PrincipalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"full_name",
			"username",
			"email",
			"phone_no",
			"password_hash",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"full_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"username": bson.M{
				"bsonType": "string",
				"pattern":  "^[a-z0-9_.]{3,30}$",
			},

			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"phone_no": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},

			"password_hash": bson.M{
				"bsonType": "string",
			},

			"refresh_token": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
