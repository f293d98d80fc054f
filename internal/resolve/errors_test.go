package resolve_test

import (
	"testing"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/testutil"
)

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      schema.RawSchema
		code     alerr.Code
		contains []string
	}{
		{
			name: "type not found",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id"),
				testutil.Model("Post", "id Int @id", "author Usr"),
			),
			code:     alerr.ErrTypeNotFound,
			contains: []string{"type not found: Post/author/Usr", "did you mean 'User'?"},
		},
		{
			name: "relation on scalar",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "name String @relation(x)"),
			),
			code:     alerr.ErrRelationOnScalar,
			contains: []string{"User.name"},
		},
		{
			name: "same explicit name twice in one model",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "a Post @relation(x)", "b Post[] @relation(x)"),
				testutil.Model("Post", "id Int @id"),
			),
			code:     alerr.ErrRelationNameConflict,
			contains: []string{`relation name "x" is used by both User.a and User.b`},
		},
		{
			name: "explicit name reused by another model pair",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "posts Post[] @relation(owns)"),
				testutil.Model("Post", "id Int @id"),
				testutil.Model("Comment", "id Int @id", "user User @relation(owns)"),
			),
			code: alerr.ErrRelationNameConflict,
		},
		{
			name: "explicit name equal to a synthesized one on the same model",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "a Post @relation(relation#PostUser)", "b Post"),
				testutil.Model("Post", "id Int @id"),
			),
			code:     alerr.ErrRelationNameConflict,
			contains: []string{"carried twice by model User"},
		},
		{
			name: "synthesized names collide across model pairs",
			raw: testutil.Schema(
				testutil.Model("A", "id Int @id", "bc BC"),
				testutil.Model("BC", "id Int @id"),
				testutil.Model("AB", "id Int @id", "c C"),
				testutil.Model("C", "id Int @id"),
			),
			code:     alerr.ErrDisambiguation,
			contains: []string{`relation name "relation#ABC"`, "explicit, unique name"},
		},
		{
			name: "missing reference",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id"),
				testutil.Model("Post", "id Int @id", "userId Int", "user User @relation(fields:[userId], references:[uid])"),
			),
			code:     alerr.ErrMissingReference,
			contains: []string{"relation reference uid of Post.user does not exist on model User"},
		},
		{
			name: "fields and references of different length",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "tenant Int"),
				testutil.Model("Post", "id Int @id", "userId Int", "user User @relation(fields:[userId], references:[id, tenant])"),
			),
			code:     alerr.ErrRelationArity,
			contains: []string{"1 fields but 2 references"},
		},
		{
			name: "fields on a list member",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "postId Int", "posts Post[] @relation(fields:[postId], references:[id])"),
				testutil.Model("Post", "id Int @id"),
			),
			code:     alerr.ErrForeignKeyPlacement,
			contains: []string{"list member User.posts"},
		},
		{
			name: "fields on both sides",
			raw: testutil.Schema(
				testutil.Model("User", "id Int @id", "profileId Int", "profile Profile @relation(fields:[profileId], references:[id])"),
				testutil.Model("Profile", "id Int @id", "userId Int", "user User @relation(fields:[userId], references:[id])"),
			),
			code:     alerr.ErrForeignKeyPlacement,
			contains: []string{"on both User.profile and Profile.user"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveErr(t, tt.raw)
			testutil.AssertError(t, err, tt.code)
			testutil.AssertKind(t, err, alerr.KindUserConfig)
			testutil.AssertErrorContains(t, err, tt.contains...)
		})
	}
}

func TestErrorLocationPointsIntoResolver(t *testing.T) {
	err := resolveErr(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "friend Frend"),
	))

	root := alerr.Root(err)
	if root == nil {
		t.Fatal("expected a coded error")
	}
	if loc := root.GetLocation(); loc.File != "resolve/types.go" || loc.Line == 0 {
		t.Errorf("location = %s, want resolve/types.go:<line>", loc)
	}
}

func TestUnnamedSelfRelation(t *testing.T) {
	res := mustResolve(t, testutil.Schema(
		testutil.Model("Category",
			"id Int @id",
			"parentId Int?",
			"parent Category? @relation(fields:[parentId], references:[id])",
		),
	))

	rel, ok := res.Relation("relation#CategoryCategory")
	if !ok {
		t.Fatalf("self relation missing: %+v", res.Relations)
	}
	if rel.Kind != resolve.OneToMany || rel.To != nil {
		t.Errorf("self relation = %+v, want one-sided one-to-many", rel)
	}
}

// An unnamed list member next to a named relation between the same models
// is its own one-to-many: no join table is derived for it.
func TestLoneListMemberHasNoJoinTable(t *testing.T) {
	res := mustResolve(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "posts Post[]"),
		testutil.Model("Post",
			"id Int @id",
			"authorId Int",
			"author User @relation(authored, fields:[authorId], references:[id])",
		),
	))

	if len(res.JoinTables) != 0 {
		t.Fatalf("JoinTables = %+v, want none", res.JoinTables)
	}

	lone, ok := res.Relation("relation#PostUser")
	if !ok {
		t.Fatalf("relation#PostUser missing: %+v", res.Relations)
	}
	if lone.Kind != resolve.OneToMany || lone.To != nil || lone.Owner != nil {
		t.Errorf("relation#PostUser = %+v, want one-to-many without mirror or owner", lone)
	}

	authored, ok := res.Relation("authored")
	if !ok || authored.Kind != resolve.OneToMany || authored.Owner == nil || *authored.Owner != ref("Post", "author") {
		t.Errorf("authored = %+v", authored)
	}
}

// A self-referencing list member is its own mirror.
func TestSelfListMemberIsManyToMany(t *testing.T) {
	res := mustResolve(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "friends User[] @relation(friends)"),
	))

	rel, ok := res.Relation("friends")
	if !ok || rel.Kind != resolve.ManyToMany || rel.To == nil || *rel.To != ref("User", "friends") {
		t.Errorf("friends = %+v", rel)
	}
	if _, ok := res.JoinTable("friends"); !ok || len(res.JoinTables) != 1 {
		t.Errorf("JoinTables = %+v, want friends", res.JoinTables)
	}
}

// Two unnamed list members with the same name on different models are not
// paired by member name: each pairs through its own relation name.
func TestMirrorsArePairedByRelationName(t *testing.T) {
	res := mustResolve(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "items Post[] @relation(likes)"),
		testutil.Model("Post", "id Int @id", "items User[] @relation(views)"),
	))

	if len(res.JoinTables) != 0 {
		t.Fatalf("JoinTables = %+v, want none for unmirrored members", res.JoinTables)
	}
	if len(res.Relations) != 2 {
		t.Fatalf("Relations = %+v, want likes and views", res.Relations)
	}
	for _, rel := range res.Relations {
		if rel.To != nil || rel.Kind != resolve.OneToMany {
			t.Errorf("relation %s = %+v, want unmirrored one-to-many", rel.Name, rel)
		}
	}
}
