package web

// htmlContent is the viewer page. It draws whatever the server's session
// tells it to with three.js and sends its input back over /ws.
const htmlContent = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>3D Model Viewer</title>
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: Arial, sans-serif;
            overflow: hidden;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
        }
        #container {
            width: 100vw;
            height: 100vh;
            display: flex;
            flex-direction: column;
        }
        #controls {
            display: flex;
            gap: 8px;
            align-items: center;
            padding: 10px 15px;
            background: rgba(0, 0, 0, 0.5);
        }
        #controls button {
            padding: 8px 16px;
            border: none;
            border-radius: 5px;
            background: #4a5568;
            color: white;
            cursor: pointer;
        }
        #controls button:hover {
            background: #2d3748;
        }
        #fileInput, #imageInput {
            display: none;
        }
        .status {
            margin-left: auto;
            padding: 6px 12px;
            border-radius: 5px;
            font-size: 12px;
            color: white;
        }
        .connected {
            background: #48bb78;
        }
        .disconnected {
            background: #f56565;
        }
        #viewer {
            flex: 1;
            position: relative;
            cursor: grab;
            touch-action: none;
        }
        #errorPanel {
            position: absolute;
            inset: 0;
            display: none;
            align-items: center;
            justify-content: center;
            color: #f56565;
            font-size: 18px;
            background: #2a2a2a;
        }
        #message {
            color: white;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div id="container">
        <div id="controls">
            <button onclick="document.getElementById('fileInput').click()">Load OBJ</button>
            <input type="file" id="fileInput" accept=".obj" onchange="loadModelFile(event)">
            <button onclick="send({type: 'reset'})">Reset View</button>
            <button onclick="send({type: 'wireframe'})">Wireframe</button>
            <button onclick="document.getElementById('imageInput').click()">Upload Image</button>
            <input type="file" id="imageInput" accept="image/*" onchange="uploadImage(event)">
            <button onclick="window.open('/snapshot.png')">Snapshot</button>
            <span id="message"></span>
            <div id="status" class="status disconnected">Disconnected</div>
        </div>
        <div id="viewer">
            <div id="errorPanel"></div>
        </div>
    </div>

    <script src="https://cdnjs.cloudflare.com/ajax/libs/three.js/r128/three.min.js"></script>

    <script>
        let ws, scene, camera, renderer, mesh;
        let geometries = {};
        let materials = {};
        let listeners = [];

        const container = document.getElementById('viewer');
        const errorPanel = document.getElementById('errorPanel');

        function send(msg) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify(msg));
            }
        }

        function listen(target, type, fn, opts) {
            target.addEventListener(type, fn, opts);
            listeners.push([target, type, fn, opts]);
        }

        function touches(event) {
            return Array.from(event.touches).map(t => ({ x: t.clientX, y: t.clientY }));
        }

        function sendSize() {
            send({ type: 'resize', width: container.clientWidth, height: container.clientHeight });
        }

        function attachInput() {
            listen(container, 'mousedown', e => send({ type: 'pointerdown', x: e.clientX, y: e.clientY }));
            listen(container, 'mousemove', e => send({ type: 'pointermove', x: e.clientX, y: e.clientY }));
            listen(container, 'mouseup', () => send({ type: 'pointerup' }));
            listen(container, 'mouseleave', () => send({ type: 'pointerup' }));
            listen(container, 'touchstart', e => { e.preventDefault(); send({ type: 'touchstart', touches: touches(e) }); }, { passive: false });
            listen(container, 'touchmove', e => { e.preventDefault(); send({ type: 'touchmove', touches: touches(e) }); }, { passive: false });
            listen(container, 'touchend', () => send({ type: 'touchend' }));
            listen(container, 'wheel', e => { e.preventDefault(); send({ type: 'wheel', deltaY: e.deltaY }); }, { passive: false });
            listen(window, 'resize', sendSize);
        }

        function teardown() {
            listeners.forEach(([target, type, fn, opts]) => target.removeEventListener(type, fn, opts));
            listeners = [];
            Object.values(geometries).forEach(g => g.dispose());
            Object.values(materials).forEach(m => m.dispose());
            geometries = {};
            materials = {};
            if (renderer) {
                renderer.dispose();
                container.removeChild(renderer.domElement);
            }
            scene = camera = renderer = mesh = null;
        }

        function setVec(v, p) {
            v.set(p.X, p.Y, p.Z);
        }

        const handlers = {
            init(msg) {
                const s = msg.scene;
                scene = new THREE.Scene();
                scene.background = new THREE.Color(s.background);
                const c = s.camera;
                camera = new THREE.PerspectiveCamera(c.fov, c.aspect, c.near, c.far);
                setVec(camera.position, c.position);
                camera.lookAt(0, 0, 0);
                renderer = new THREE.WebGLRenderer({ antialias: true });
                container.appendChild(renderer.domElement);
                s.lights.forEach(l => {
                    if (!l.position) {
                        scene.add(new THREE.AmbientLight(l.color, l.intensity));
                        return;
                    }
                    const light = new THREE.DirectionalLight(l.color, l.intensity);
                    setVec(light.position, l.position);
                    scene.add(light);
                });
                attachInput();
            },
            size(msg) {
                renderer.setSize(msg.width, msg.height);
            },
            geometry(msg) {
                const g = new THREE.BufferGeometry();
                g.setAttribute('position', new THREE.Float32BufferAttribute(msg.positions, 3));
                g.setAttribute('normal', new THREE.Float32BufferAttribute(msg.normals, 3));
                g.setIndex(msg.indices || []);
                geometries[msg.id] = g;
            },
            material(msg) {
                materials[msg.id] = new THREE.MeshPhongMaterial({
                    color: msg.material.color,
                    wireframe: msg.material.wireframe
                });
            },
            show(msg) {
                if (mesh) {
                    scene.remove(mesh);
                }
                mesh = new THREE.Mesh(geometries[msg.geometry], materials[msg.material]);
                scene.add(mesh);
                errorPanel.style.display = 'none';
                renderer.domElement.style.display = 'block';
            },
            hide() {
                if (mesh) {
                    scene.remove(mesh);
                    mesh = null;
                }
            },
            release(msg) {
                const res = geometries[msg.id] || materials[msg.id];
                if (res) {
                    res.dispose();
                }
                delete geometries[msg.id];
                delete materials[msg.id];
            },
            frame(msg) {
                const f = msg.frame;
                if (mesh) {
                    mesh.rotation.set(f.rotation.x, f.rotation.y, f.rotation.z);
                }
                setVec(camera.position, f.camera.position);
                camera.aspect = f.camera.aspect;
                camera.updateProjectionMatrix();
                camera.lookAt(0, 0, 0);
                renderer.render(scene, camera);
            },
            error(msg) {
                errorPanel.textContent = msg.message;
                errorPanel.style.display = 'flex';
                if (renderer) {
                    renderer.domElement.style.display = 'none';
                }
            },
            dispose() {
                teardown();
            }
        };

        function connectWebSocket() {
            const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + window.location.host + '/ws?container=viewer');

            ws.onopen = function() {
                console.log('WebSocket connected');
                updateStatus(true);
                const containers = {};
                containers[container.id] = { width: container.clientWidth, height: container.clientHeight };
                send({ type: 'hello', containers: containers });
            };

            ws.onmessage = function(event) {
                try {
                    const msg = JSON.parse(event.data);
                    const handler = handlers[msg.type];
                    if (handler) {
                        handler(msg);
                    }
                } catch (e) {
                    console.error('Error handling message:', e);
                }
            };

            ws.onerror = function(error) {
                console.error('WebSocket error:', error);
                updateStatus(false);
            };

            ws.onclose = function() {
                console.log('WebSocket closed. Reconnecting...');
                updateStatus(false);
                teardown();
                setTimeout(connectWebSocket, 3000);
            };
        }

        function updateStatus(connected) {
            const statusEl = document.getElementById('status');
            statusEl.textContent = connected ? 'Connected' : 'Disconnected';
            statusEl.className = 'status ' + (connected ? 'connected' : 'disconnected');
        }

        function showMessage(text) {
            document.getElementById('message').textContent = text;
        }

        function loadModelFile(event) {
            const file = event.target.files[0];
            if (!file) return;
            const reader = new FileReader();
            reader.onerror = function() {
                console.error('Error reading file:', reader.error);
                showMessage('Load failed');
            };
            reader.onload = function(e) {
                send({ type: 'load', text: e.target.result });
                showMessage(file.name);
            };
            reader.readAsText(file);
            event.target.value = '';
        }

        function uploadImage(event) {
            const file = event.target.files[0];
            if (!file) return;
            const form = new FormData();
            form.append('image', file);
            fetch('/upload', { method: 'POST', body: form })
                .then(r => r.json())
                .then(body => showMessage(body.message || body.error))
                .catch(err => showMessage('Upload failed: ' + err));
            event.target.value = '';
        }

        window.onload = connectWebSocket;
    </script>
</body>
</html>
`
