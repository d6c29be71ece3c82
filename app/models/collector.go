package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collector is a petition signature collector.
type Collector struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	FirstName      string              `bson:"first_name" json:"first_name"`
	LastName       string              `bson:"last_name" json:"last_name"`
	Phone          string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string              `bson:"email,omitempty" json:"email,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
}

// FullName returns "First Last".
func (c *Collector) FullName() string {
	return c.FirstName + " " + c.LastName
}

// DisplayName returns "Last, First" for sorted pick lists.
func (c *Collector) DisplayName() string {
	return c.LastName + ", " + c.FirstName
}

// Organization manages zero or more collectors.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
