package fabrik

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID    int64
	Name  string
	Email string `fabrik:"email"`
	Score int
}

type testPost struct {
	Title  string
	Author *testUser
}

// recordingSaver captures create-strategy persistence calls.
type recordingSaver struct {
	factories []string
}

func (s *recordingSaver) Save(_ context.Context, factory string, _ any) error {
	s.factories = append(s.factories, factory)
	return nil
}

func defineUser(t *testing.T, e *Env) {
	t.Helper()
	_, err := e.DefineSequence("email", 1, func(n int64) any {
		return fmt.Sprintf("person%d@example.com", n)
	})
	require.NoError(t, err)
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "Billy Idol")
		require.NoError(t, f.Declare("email"))
	}))
}

func TestEnv_BuildStructInstance(t *testing.T) {
	e := New()
	defineUser(t, e)

	v, err := e.Build(context.Background(), "user", nil)
	require.NoError(t, err)

	user, ok := v.(*testUser)
	require.True(t, ok)
	assert.Equal(t, "Billy Idol", user.Name)
	assert.Equal(t, "person1@example.com", user.Email)

	v, err = e.Build(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "person2@example.com", v.(*testUser).Email, "global sequence advances across builds")
}

func TestEnv_BuildMapInstance(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("settings", nil, func(f *Proxy) {
		f.Set("theme", "dark")
		f.Set("retries", int64(3))
	}))

	v, err := e.Build(context.Background(), "settings", nil)
	require.NoError(t, err)

	want := map[string]any{"theme": "dark", "retries": int64(3)}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("instance mismatch (-want +got):\n%s", diff)
	}
}

func TestEnv_OverrideSkipsGenerator(t *testing.T) {
	e := New()
	ran := false
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Lazy("name", func(*BuildContext) (any, error) {
			ran = true
			return "generated", nil
		})
	}))

	v, err := e.Build(context.Background(), "user", Options{"name": "override"})
	require.NoError(t, err)

	assert.Equal(t, "override", v.(*testUser).Name)
	assert.False(t, ran, "overridden generator must not run")
}

func TestEnv_OverrideForUndeclaredAttribute(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "Billy Idol")
	}))

	v, err := e.Build(context.Background(), "user", Options{"score": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, v.(*testUser).Score)
}

func TestEnv_LaterDeclarationWins(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "first")
		f.Set("name", "second")
	}))

	v, err := e.Build(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", v.(*testUser).Name)
}

func TestEnv_NoValueAttributeIsNotAssigned(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		require.NoError(t, f.AddAttribute("name", NoValue, nil))
	}))

	v, err := e.Build(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "", v.(*testUser).Name, "declared-empty attribute stays at the zero value")
}

func TestEnv_GeneratorSeesEarlierAttributes(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "billy")
		f.Lazy("email", func(bc *BuildContext) (any, error) {
			return fmt.Sprintf("%s@example.com", bc.Get("name")), nil
		})
	}))

	v, err := e.Build(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "billy@example.com", v.(*testUser).Email)
}

func TestEnv_GeneratorErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Lazy("name", func(*BuildContext) (any, error) { return nil, boom })
	}))

	_, err := e.Build(context.Background(), "user", nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"user"`)
}

func TestEnv_AssociationBuildsUnderParentStrategy(t *testing.T) {
	saver := &recordingSaver{}
	e := New(WithSaver(saver))
	defineUser(t, e)
	require.NoError(t, e.Define("post", testPost{}, func(f *Proxy) {
		f.Set("title", "White Wedding")
		f.Association("author", Options{"factory": "user"})
	}))

	v, err := e.Create(context.Background(), "post", nil)
	require.NoError(t, err)

	post := v.(*testPost)
	require.NotNil(t, post.Author)
	assert.Equal(t, "Billy Idol", post.Author.Name)

	// The association was created, not merely built: both instances hit the
	// saver, the sub-build first.
	assert.Equal(t, []string{"user", "post"}, saver.factories)
}

func TestEnv_AssociationOptionsActAsOverrides(t *testing.T) {
	e := New()
	defineUser(t, e)
	require.NoError(t, e.Define("post", testPost{}, func(f *Proxy) {
		f.Association("author", Options{"factory": "user", "name": "Ada"})
	}))

	v, err := e.Build(context.Background(), "post", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada", v.(*testPost).Author.Name)
}

func TestEnv_UnknownAssociationTargetFailsAtBuildTime(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("post", testPost{}, func(f *Proxy) {
		require.NoError(t, f.Declare("author")) // no author factory registered
	}))

	_, err := e.Build(context.Background(), "post", nil)
	require.ErrorIs(t, err, ErrFactoryNotFound)
}

func TestEnv_CreateFallsBackToInstanceSave(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("record", savedRecord{}, func(f *Proxy) {
		f.Set("name", "r1")
	}))

	v, err := e.Create(context.Background(), "record", nil)
	require.NoError(t, err)
	assert.True(t, v.(*savedRecord).saved)
}

type savedRecord struct {
	Name  string
	saved bool
}

func (r *savedRecord) Save(context.Context) error {
	r.saved = true
	return nil
}

func TestEnv_CallbackOrderPerStrategy(t *testing.T) {
	var ran []string
	mk := func(tag string) Callback {
		return func(*BuildContext, any) error {
			ran = append(ran, tag)
			return nil
		}
	}

	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.AfterBuild(mk("build-1"))
		f.AfterBuild(mk("build-2"))
		f.AfterCreate(mk("create"))
		f.AfterStub(mk("stub"))
	}))

	_, err := e.Build(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"build-1", "build-2"}, ran)

	ran = nil
	_, err = e.Create(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"build-1", "build-2", "create"}, ran)

	ran = nil
	_, err = e.Stub(context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stub"}, ran)
}

func TestEnv_CallbackErrorAbortsBuild(t *testing.T) {
	boom := errors.New("boom")
	second := false

	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.AfterBuild(func(*BuildContext, any) error { return boom })
		f.AfterBuild(func(*BuildContext, any) error { second = true; return nil })
	}))

	_, err := e.Build(context.Background(), "user", nil)
	require.ErrorIs(t, err, boom)
	assert.False(t, second, "first callback error aborts the rest")
}

func TestEnv_StubAssignsID(t *testing.T) {
	e := New()
	require.NoError(t, e.Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "Billy Idol")
	}))

	first, err := e.Stub(context.Background(), "user", nil)
	require.NoError(t, err)
	second, err := e.Stub(context.Background(), "user", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.(*testUser).ID)
	assert.Equal(t, int64(2), second.(*testUser).ID)
}

func TestDefaultEnv_PackageLevelAPI(t *testing.T) {
	prev := Default()
	SetDefault(New())
	t.Cleanup(func() { SetDefault(prev) })

	DefineSequence("email", 1, func(n int64) any {
		return fmt.Sprintf("person%d@example.com", n)
	})
	Define("user", testUser{}, func(f *Proxy) {
		f.Set("name", "Billy Idol")
		require.NoError(t, f.Declare("email"))
	})

	user, err := BuildAs[*testUser](context.Background(), "user", nil)
	require.NoError(t, err)
	assert.Equal(t, "Billy Idol", user.Name)
	assert.Equal(t, "person1@example.com", user.Email)

	_, err = BuildAs[*testPost](context.Background(), "user", nil)
	require.Error(t, err, "wrong type assertion must surface")

	Reset()
	_, err = Build(context.Background(), "user", nil)
	require.ErrorIs(t, err, ErrFactoryNotFound)
}
