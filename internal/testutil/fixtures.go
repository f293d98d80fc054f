package testutil

import (
	"strings"
	"testing"

	"github.com/hlop3z/ormer/internal/schema"
)

// Model builds a RawModel from member lines of the form "name annotation".
//
// Example:
//
//	testutil.Model("User", "id Int @id", "posts Post[]")
func Model(name string, members ...string) schema.RawModel {
	m := schema.RawModel{Name: name}
	for _, line := range members {
		memberName, annotation, _ := strings.Cut(strings.TrimSpace(line), " ")
		m.Members = append(m.Members, schema.RawMember{
			Name:       memberName,
			Annotation: annotation,
		})
	}
	return m
}

// Schema builds a postgres RawSchema from models.
func Schema(models ...schema.RawModel) schema.RawSchema {
	return schema.RawSchema{Database: "postgres", Models: models}
}

// MustAssemble assembles raw or fails the test.
func MustAssemble(t *testing.T, raw schema.RawSchema) *schema.Schema {
	t.Helper()

	s, err := schema.Assemble(raw)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return s
}

// Blog returns a small schema with one relation of each kind:
//
//	User 1-n Post   (User.posts / Post.author, unnamed)
//	User 1-1 Profile (User.profile / Profile.user, unnamed)
//	Post n-m Tag    (Post.tags / Tag.posts, named "tagged")
func Blog() schema.RawSchema {
	return Schema(
		Model("User",
			"id Int @id @default(@autoInc)",
			"email String",
			"posts Post[]",
			"profile Profile?",
		),
		Model("Profile",
			"id Int @id @default(@autoInc)",
			"bio String?",
			"userId Int",
			"user User @relation(fields:[userId], references:[id])",
		),
		Model("Post",
			"id Uuid @id @default(@uuid)",
			"title String",
			"authorId Int",
			"author User @relation(fields:[authorId], references:[id])",
			"tags Tag[] @relation(tagged)",
			"createdAt DateTime @default(@now)",
		),
		Model("Tag",
			"id Int @id @default(@autoInc)",
			"name String",
			"posts Post[] @relation(tagged)",
		),
	)
}

// BlogYAML is Blog as a schema document.
const BlogYAML = `database:
  type: postgres
models:
  User:
    members:
      id: Int @id @default(@autoInc)
      email: String
      posts: Post[]
      profile: Profile?
  Profile:
    members:
      id: Int @id @default(@autoInc)
      bio: String?
      userId: Int
      user: User @relation(fields:[userId], references:[id])
  Post:
    members:
      id: Uuid @id @default(@uuid)
      title: String
      authorId: Int
      author: User @relation(fields:[authorId], references:[id])
      tags: Tag[] @relation(tagged)
      createdAt: DateTime @default(@now)
  Tag:
    members:
      id: Int @id @default(@autoInc)
      name: String
      posts: Post[] @relation(tagged)
`
