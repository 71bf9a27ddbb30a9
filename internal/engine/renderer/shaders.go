package renderer

// meshVertexShader transforms positions to clip space and passes the normal
// along in view space. Object scale is uniform, so mat3(view * model) is a
// valid normal matrix once the result is normalized.
const meshVertexShader = `#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vNormal;

void main() {
    mat4 modelView = uView * uModel;
    vNormal = mat3(modelView) * aNormal;
    gl_Position = uProjection * modelView * vec4(aPosition, 1.0);
}
`

// meshFragmentShader draws a solid color, darkened where the surface turns
// away from the viewer so silhouettes stay readable.
const meshFragmentShader = `#version 410 core

in vec3 vNormal;

uniform vec3 uColor;

out vec4 FragColor;

void main() {
    float facing = abs(normalize(vNormal).z);
    FragColor = vec4(uColor * (0.3 + 0.7 * facing), 1.0);
}
`
