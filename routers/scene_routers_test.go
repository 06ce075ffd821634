package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GrainArc/GeoMesh/config"
	"github.com/GrainArc/GeoMesh/services"
	"github.com/GrainArc/GeoMesh/views"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

const abGeoJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"name":"A","cp":[0.5,0.5]},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
 {"type":"Feature","properties":{"name":"B","cp":[10.5,10.5]},
  "geometry":{"type":"Polygon","coordinates":[[[10,10],[11,10],[11,11],[10,11],[10,10]]]}}
]}`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := config.OpenDatabase(filepath.Join(t.TempDir(), config.DBFileName), logger.Silent)
	require.NoError(t, err)
	svc := services.NewSceneService(context.Background(), config.DefaultConfig(), services.NewSceneStore(db))
	return NewEngine(svc)
}

func do(t *testing.T, r http.Handler, method, path string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func buildAB(t *testing.T, r http.Handler) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/scene/Build?name=ab", []byte(abGeoJSON), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		ID    string `json:"id"`
		Nodes int    `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	require.NotEmpty(t, summary.ID)
	assert.Equal(t, 2, summary.Nodes)
	return summary.ID
}

func TestBuildListGetDelete(t *testing.T) {
	r := newEngine(t)
	id := buildAB(t, r)

	w, env := do(t, r, http.MethodGet, "/scene/List", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	w, env = do(t, r, http.MethodGet, "/scene/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var sc struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sc))
	require.Len(t, sc.Nodes, 2)
	assert.Equal(t, "A", sc.Nodes[0].Name)

	w, env = do(t, r, http.MethodGet, "/scene/"+id+"/Node/B", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var picked struct {
		Anchor []float64 `json:"anchor"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &picked))
	require.Len(t, picked.Anchor, 2)
	assert.InDelta(t, 10.5, picked.Anchor[0], 1e-6)
	assert.InDelta(t, 10.5, picked.Anchor[1], 1e-6)

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Node/Z", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/scene/"+id, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/scene/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/scene/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildMultipart(t *testing.T) {
	r := newEngine(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "regions.geojson")
	require.NoError(t, err)
	_, err = fw.Write([]byte(abGeoJSON))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w, env := do(t, r, http.MethodPost, "/scene/Build", body.Bytes(), mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "regions", summary.Name)
}

func TestBuildRejectsBadInput(t *testing.T) {
	r := newEngine(t)
	w, _ := do(t, r, http.MethodPost, "/scene/Build", nil, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/scene/Build", []byte(`{"type":"FeatureCollection","features":[]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/scene/Build", []byte(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/scene/Build", []byte(`<kml><Document>`), "application/xml")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	r := newEngine(t)
	id := buildAB(t, r)

	w, _ := do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=obj", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mtllib ab.mtl")
	assert.Contains(t, w.Body.String(), "o A\n")

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=mtl", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "newmtl region")

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=dxf", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "3DFACE")

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nodes"`)

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=zip", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("PK"), w.Body.Bytes()[:2])

	w, _ = do(t, r, http.MethodGet, "/scene/"+id+"/Export?format=fbx", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(newEngine(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/scene/Stream?name=ab"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(abGeoJSON)))
	var names []string
	for {
		var msg views.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "done" {
			assert.Equal(t, 2, msg.Count)
			assert.NotEmpty(t, msg.ID)
			break
		}
		require.Equal(t, "node", msg.Type, msg.Message)
		names = append(names, msg.Node.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"FeatureCollection","features":[]}`)))
	var msg views.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}
