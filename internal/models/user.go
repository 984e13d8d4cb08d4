package models

import "time"

type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FullName   string    `bson:"full_name" json:"fullName"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password" json:"-"`
	Bio        string    `bson:"bio" json:"bio"`
	ProfilePic string    `bson:"profile_pic" json:"profilePic"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
