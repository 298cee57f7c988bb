package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"type",
			"property_id",
			"occurred_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booking.created",
					"booking.status_changed",
					"booking.accepted",
					"booking.cancelled",
					"booking.auto_rejected",
					"property.availability_reset",
				},
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"property_id": bson.M{
				"bsonType": "string",
			},

			"rejected_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"occurred_at": bson.M{
				"bsonType": "date",
			},

			"recorded_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
